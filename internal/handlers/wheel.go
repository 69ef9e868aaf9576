package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/category"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/internal/services"
)

type WheelHandler struct {
	service *services.WheelService
}

func NewWheelHandler(policy *category.Policy) *WheelHandler {
	return &WheelHandler{
		service: services.NewWheelService(policy, nil),
	}
}

func SetupWheelRoutes(router fiber.Router, policy *category.Policy) {
	h := NewWheelHandler(policy)

	router.Post("/spin", h.Spin)
}

type spinRequest struct {
	Intent     string        `json:"intent"`
	Candidates []models.Spot `json:"candidates"`
}

// Spin godoc
// @Summary Spin the wheel
// @Description Filters the candidate spots through the category safety net
// @Description for the given intent and picks one at weighted random.
// @Tags wheel
// @Accept json
// @Produce json
// @Param request body spinRequest true "Intent and candidate spots"
// @Success 200 {object} services.SpinResult
// @Failure 422 {object} ErrorResponse
// @Router /wheel/spin [post]
func (h *WheelHandler) Spin(c *fiber.Ctx) error {
	var req spinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.service.Spin(req.Candidates, req.Intent)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(result)
}
