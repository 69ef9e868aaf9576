package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/internal/services"
	"github.com/spinspot/server/pkg/geo"
)

type SearchHandler struct {
	service *services.SearchService
}

func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func SetupSearchRoutes(router fiber.Router, service *services.SearchService) {
	h := NewSearchHandler(service)

	router.Get("/events", h.SearchEvents)
}

type searchResponse struct {
	Items []models.Event `json:"items"`
	Count int            `json:"count"`
}

// SearchEvents godoc
// @Summary Search events
// @Description Searches the external event provider. Results are cached by
// @Description name/category/timeframe/scope; lat/lng only affect the
// @Description distance ranking of the response.
// @Tags search
// @Produce json
// @Param name query string true "Search text"
// @Param timeframe query string true "Timeframe, e.g. this-weekend"
// @Param category query string false "Category filter"
// @Param scope query string false "Geographic scope"
// @Param lat query number false "Caller latitude"
// @Param lng query number false "Caller longitude"
// @Success 200 {object} searchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /search/events [get]
func (h *SearchHandler) SearchEvents(c *fiber.Ctx) error {
	params := services.SearchParams{
		Name:      c.Query("name"),
		Category:  c.Query("category"),
		Timeframe: c.Query("timeframe"),
		Scope:     c.Query("scope"),
		Origin:    originFromQuery(c),
	}

	events, err := h.service.Search(c.UserContext(), params)
	if err != nil {
		status := statusForError(err)
		if status == fiber.StatusInternalServerError {
			// Provider transport failure: empty result, upstream blame.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"items": []models.Event{},
				"error": "event search unavailable",
			})
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(searchResponse{Items: events, Count: len(events)})
}

// originFromQuery reads the caller location; both coordinates are required
// for an origin to count.
func originFromQuery(c *fiber.Ctx) *geo.Point {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	return &geo.Point{Lat: lat, Lng: lng}
}
