package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/middleware"
	"github.com/spinspot/server/internal/services"
)

type AuthHandler struct {
	service *services.UserService
}

func NewAuthHandler(db *database.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: services.NewUserService(db, cfg),
	}
}

func SetupAuthRoutes(router fiber.Router, db *database.DB, cfg *config.Config) {
	h := NewAuthHandler(db, cfg)

	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/refresh", h.RefreshToken)
	router.Post("/devices", middleware.AuthRequired(cfg), h.RegisterDevice)
}

type authResponse struct {
	User   interface{}         `json:"user"`
	Tokens *services.TokenPair `json:"tokens"`
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Registration data"
// @Success 201 {object} authResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, tokens, err := h.service.Register(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: user, Tokens: tokens})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} authResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, tokens, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(authResponse{User: user, Tokens: tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	tokens, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(tokens)
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice godoc
// @Summary Register a push notification token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body registerDeviceRequest true "Device token"
// @Success 204
// @Router /auth/devices [post]
func (h *AuthHandler) RegisterDevice(c *fiber.Ctx) error {
	var req registerDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.service.RegisterDevice(c.UserContext(), middleware.ViewerID(c), req.Token, req.Platform); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
