package api

import (
	"github.com/gofiber/fiber/v2"

	"task-service/internal/service"
)

const avatarFormField = "avatar"

type AvatarHandler struct {
	avatarService service.AvatarService
}

func NewAvatarHandler(avatarService service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService}
}

func (h *AvatarHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(avatarFormField)
	if err != nil {
		return respondError(c, service.ErrInvalidImage)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, service.ErrInvalidImage)
	}
	defer file.Close()

	if err := h.avatarService.Upload(c.UserContext(), CurrentUser(c).ID, fileHeader.Filename, fileHeader.Size, file); err != nil {
		return respondError(c, err)
	}

	return sendEmpty(c, fiber.StatusOK)
}

func (h *AvatarHandler) Delete(c *fiber.Ctx) error {
	if err := h.avatarService.Delete(c.UserContext(), CurrentUser(c).ID); err != nil {
		return respondError(c, err)
	}
	return sendEmpty(c, fiber.StatusOK)
}

func (h *AvatarHandler) Get(c *fiber.Ctx) error {
	userID, err := service.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	image, err := h.avatarService.Get(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(image)
}
