package handlers

import (
	"github.com/gofiber/fiber/v2"

	"floryn/internal/apperror"
	"floryn/internal/middleware"
	"floryn/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. limiter guards the
// credential endpoints; authRequired guards the account endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limiter, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", limiter, h.HandleRegister)
	authRoutes.Post("/login", limiter, h.HandleLogin)
	authRoutes.Post("/verify", h.HandleVerify)
	authRoutes.Get("/profile", authRequired, h.HandleProfile)
	authRoutes.Put("/change-password", authRequired, limiter, h.HandleChangePassword)
}

// RegisterRequest is the sign-up body. A role field, if sent, is ignored.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// HandleVerify reports whether a token is currently valid. It never fails on
// a bad token, it answers valid=false.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(fiber.Map{"valid": false})
	}

	identity, err := h.authService.VerifyToken(c.UserContext(), req.Token)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindPersistence {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"valid": false})
	}
	return c.JSON(fiber.Map{"valid": true, "user": identity})
}

// HandleProfile returns the signed-in user's account.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	user, err := h.authService.Profile(c.UserContext(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// HandleChangePassword replaces the signed-in user's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, errNoIdentity)
	}

	var req ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

var errNoIdentity = apperror.New(apperror.KindUnauthenticated, "authentication required")
