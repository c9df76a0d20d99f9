package handlers

import (
	"errors"
	"log"

	"wfmuser/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes. They must be
// registered before the user routes so "/auth" is not taken for an id.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.All("/auth", h.HandleAuth)
	router.All("/verifysession", h.HandleVerifySession)
	router.All("/revokesession", h.HandleRevokeSession)
}

// AuthRequest represents the request body for /auth. Either UserID or
// Username names the user.
type AuthRequest struct {
	UserID   string `json:"userId" form:"userId"`
	Username string `json:"username" form:"username" validate:"required_without=UserID"`
	Password string `json:"password" form:"password"`
}

// HandleAuth checks a username/password pair and returns the user's profile.
func (h *AuthHandler) HandleAuth(c *fiber.Ctx) error {
	var req AuthRequest
	if err := c.BodyParser(&req); err != nil || h.validate.Struct(req) != nil {
		log.Println("No username provided")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	username := req.UserID
	if username == "" {
		username = req.Username
	}

	profile, err := h.authService.Authenticate(username, req.Password)
	if err != nil {
		var authErr *services.AuthError
		switch {
		case errors.Is(err, services.ErrNotFound):
			log.Printf("User not found %s", username)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		case errors.As(err, &authErr):
			log.Printf("Invalid credentials for user %s", username)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": authErr.Error(),
			})
		default:
			log.Printf("Error authenticating user %s: %v", username, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not check credentials",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":       "ok",
		"userId":       username,
		"authResponse": profile,
	})
}

// HandleVerifySession always reports the session as valid; sessions are not
// tracked here.
func (h *AuthHandler) HandleVerifySession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"isValid": true,
	})
}

// HandleRevokeSession is a no-op.
func (h *AuthHandler) HandleRevokeSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{})
}
