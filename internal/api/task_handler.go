package api

import (
	"github.com/gofiber/fiber/v2"

	"task-service/internal/model"
	"task-service/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var input service.CreateTaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	task, err := h.taskService.Create(c.UserContext(), CurrentUser(c).ID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	query, err := ParseTaskQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	tasks, err := h.taskService.List(c.UserContext(), CurrentUser(c).ID, query)
	if err != nil {
		return respondError(c, err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	return c.JSON(tasks)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	taskID, err := service.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Get(c.UserContext(), CurrentUser(c).ID, taskID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(task)
}

// Update resolves the id before looking at the body, so a malformed id is a
// 404 even when the payload is also invalid.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	taskID, err := service.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	var input service.UpdateTaskInput
	if err := decodeClosed(c.Body(), &input); err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Update(c.UserContext(), CurrentUser(c).ID, taskID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	taskID, err := service.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Delete(c.UserContext(), CurrentUser(c).ID, taskID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(task)
}
