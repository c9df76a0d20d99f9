package handlers

import (
	"errors"
	"log"

	"wfmuser/internal/models"
	"wfmuser/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	users services.Directory
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.Directory) *UserHandler {
	return &UserHandler{
		users: users,
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleListUsers)
	router.Get("/:id", h.HandleGetUser)
	router.Put("/:id", h.HandleUpdateUser)
	router.Post("/", h.HandleCreateUser)
	router.Delete("/:id", h.HandleDeleteUser)
}

// HandleListUsers returns every user.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	return c.JSON(h.users.List())
}

// HandleGetUser returns a single user by id.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.users.Read(c.Params("id"))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser creates a user from {"user": {...}}.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var body struct {
		User models.NewUser `json:"user"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := h.users.Create(body.User)
	if err != nil {
		return userError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateUser merges {"user": {...}} into the user named by the path.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var body struct {
		User models.UserPatch `json:"user"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing update user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	updated, err := h.users.Update(c.Params("id"), body.User)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteUser removes a user and returns it.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	removed, err := h.users.Delete(c.Params("id"))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(removed)
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	case errors.Is(err, services.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Username already taken",
			"error":   err.Error(),
		})
	default:
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process user request",
		})
	}
}
