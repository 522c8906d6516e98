package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"task-service/internal/model"
	"task-service/internal/service"
)

type UserHandler struct {
	authService service.AuthService
	userService service.UserService
}

func NewUserHandler(authService service.AuthService, userService service.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

// UserResponse is the public view of a user. Credentials, sessions and the
// avatar never leave the service through it.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	CreatedAt time.Time `json:"created_at"`
}

type SessionsResponse struct {
	Count    int               `json:"count"`
	Sessions []SessionResponse `json:"sessions"`
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var request service.RegisterInput
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	user, token, err := h.authService.Register(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{User: NewUserResponse(user), Token: token})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	user, token, err := h.authService.Login(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(AuthResponse{User: NewUserResponse(user), Token: token})
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), CurrentUser(c).ID, CurrentToken(c)); err != nil {
		return respondError(c, err)
	}
	return sendEmpty(c, fiber.StatusOK)
}

func (h *UserHandler) LogoutAll(c *fiber.Ctx) error {
	if err := h.authService.LogoutAll(c.UserContext(), CurrentUser(c).ID); err != nil {
		return respondError(c, err)
	}
	return sendEmpty(c, fiber.StatusOK)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.JSON(NewUserResponse(CurrentUser(c)))
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := service.ParseID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var input service.UpdateUserInput
	if err := decodeClosed(c.Body(), &input); err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.UpdateUser(c.UserContext(), CurrentUser(c), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(NewUserResponse(user))
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if err := h.userService.DeleteUser(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(NewUserResponse(user))
}

func (h *UserHandler) Sessions(c *fiber.Ctx) error {
	sessions, err := h.authService.ListSessions(c.UserContext(), CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	response := SessionsResponse{
		Count:    len(sessions),
		Sessions: make([]SessionResponse, 0, len(sessions)),
	}
	for _, session := range sessions {
		response.Sessions = append(response.Sessions, SessionResponse{CreatedAt: session.CreatedAt})
	}

	return c.JSON(response)
}
