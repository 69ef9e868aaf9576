package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/category"
)

type CategoryHandler struct {
	policy *category.Policy
}

func NewCategoryHandler(policy *category.Policy) *CategoryHandler {
	return &CategoryHandler{policy: policy}
}

func SetupCategoryRoutes(router fiber.Router, policy *category.Policy) {
	h := NewCategoryHandler(policy)

	router.Get("/intents", h.Intents)
}

// Intents godoc
// @Summary List known wheel intents
// @Tags categories
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /categories/intents [get]
func (h *CategoryHandler) Intents(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"intents": h.policy.Intents()})
}
