package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/places"
)

type PlacesHandler struct {
	client *places.Client
}

func NewPlacesHandler(client *places.Client) *PlacesHandler {
	return &PlacesHandler{client: client}
}

func SetupPlacesRoutes(router fiber.Router, client *places.Client) {
	h := NewPlacesHandler(client)

	router.Get("/autocomplete", h.Autocomplete)
	router.Get("/cities", h.Cities)
	router.Get("/:placeID", h.Details)
}

// Autocomplete godoc
// @Summary Autocomplete place search
// @Tags places
// @Produce json
// @Param input query string true "Partial query"
// @Param type query string false "Result type restriction, e.g. locality"
// @Param country query string false "ISO country restriction"
// @Success 200 {array} places.Prediction
// @Failure 502 {object} ErrorResponse
// @Router /places/autocomplete [get]
func (h *PlacesHandler) Autocomplete(c *fiber.Ctx) error {
	input := c.Query("input")
	if input == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "input is required"})
	}

	predictions, err := h.client.Autocomplete(c.UserContext(), input, places.AutocompleteOptions{
		Type:    c.Query("type"),
		Country: c.Query("country"),
	})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "places provider unavailable"})
	}

	return c.JSON(predictions)
}

// Cities godoc
// @Summary List cities in a region
// @Tags places
// @Produce json
// @Param region query string true "Region name"
// @Param country query string false "ISO country code"
// @Success 200 {object} map[string][]string
// @Failure 502 {object} ErrorResponse
// @Router /places/cities [get]
func (h *PlacesHandler) Cities(c *fiber.Ctx) error {
	region := c.Query("region")
	if region == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "region is required"})
	}

	cities, err := h.client.CitiesInRegion(c.UserContext(), region, c.Query("country"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "places provider unavailable"})
	}

	return c.JSON(fiber.Map{"cities": cities})
}

// Details godoc
// @Summary Resolve a place ID
// @Tags places
// @Produce json
// @Param placeID path string true "Place ID"
// @Success 200 {object} places.PlaceDetail
// @Failure 502 {object} ErrorResponse
// @Router /places/{placeID} [get]
func (h *PlacesHandler) Details(c *fiber.Ctx) error {
	detail, err := h.client.PlaceDetails(c.UserContext(), c.Params("placeID"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "places provider unavailable"})
	}

	return c.JSON(detail)
}
