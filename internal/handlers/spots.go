package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/category"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/middleware"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/internal/services"
)

type SpotHandler struct {
	service *services.SpotService
	policy  *category.Policy
}

func NewSpotHandler(db *database.DB, policy *category.Policy) *SpotHandler {
	return &SpotHandler{
		service: services.NewSpotService(db),
		policy:  policy,
	}
}

func SetupSpotRoutes(router fiber.Router, db *database.DB, policy *category.Policy, cfg *config.Config) {
	h := NewSpotHandler(db, policy)

	router.Post("/validate", h.Validate)
	router.Post("/save", middleware.AuthRequired(cfg), h.ToggleSave)
	router.Get("/saved", middleware.AuthRequired(cfg), h.ListSaved)
	router.Post("/reviews", middleware.AuthRequired(cfg), h.CreateReview)
	router.Get("/:placeID/reviews", h.ListReviews)
}

type validateSpotRequest struct {
	Intent string      `json:"intent"`
	Spot   models.Spot `json:"spot"`
}

// Validate godoc
// @Summary Validate a spot against an intent
// @Description Runs the category safety net for one spot and reports whether
// @Description it may be recommended.
// @Tags spots
// @Accept json
// @Produce json
// @Param request body validateSpotRequest true "Spot and intent"
// @Success 200 {object} map[string]bool
// @Router /spots/validate [post]
func (h *SpotHandler) Validate(c *fiber.Ctx) error {
	var req validateSpotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	return c.JSON(fiber.Map{"valid": h.policy.IsValid(req.Spot, req.Intent)})
}

// ToggleSave godoc
// @Summary Save or unsave a spot
// @Tags spots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SaveSpotInput true "Spot to bookmark"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Router /spots/save [post]
func (h *SpotHandler) ToggleSave(c *fiber.Ctx) error {
	var input services.SaveSpotInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	saved, err := h.service.ToggleSave(c.UserContext(), middleware.ViewerID(c), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"saved": saved})
}

// ListSaved godoc
// @Summary List my saved spots
// @Tags spots
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SavedSpot
// @Failure 401 {object} ErrorResponse
// @Router /spots/saved [get]
func (h *SpotHandler) ListSaved(c *fiber.Ctx) error {
	saved, err := h.service.ListSaved(c.UserContext(), middleware.ViewerID(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(saved)
}

// CreateReview godoc
// @Summary Review a place
// @Tags spots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ReviewInput true "Review, rating 1..5"
// @Success 201 {object} models.Review
// @Failure 400 {object} ErrorResponse
// @Router /spots/reviews [post]
func (h *SpotHandler) CreateReview(c *fiber.Ctx) error {
	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	review, err := h.service.CreateReview(c.UserContext(), middleware.ViewerID(c), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

// ListReviews godoc
// @Summary List reviews for a place
// @Tags spots
// @Produce json
// @Param placeID path string true "Place ID"
// @Success 200 {array} models.Review
// @Router /spots/{placeID}/reviews [get]
func (h *SpotHandler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.UserContext(), c.Params("placeID"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(reviews)
}
