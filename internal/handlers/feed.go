package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/middleware"
	"github.com/spinspot/server/internal/services"
)

type FeedHandler struct {
	service *services.FeedService
}

func NewFeedHandler(service *services.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func SetupFeedRoutes(router fiber.Router, service *services.FeedService, cfg *config.Config) {
	h := NewFeedHandler(service)

	router.Get("/", middleware.OptionalAuth(cfg), h.List)
	router.Post("/posts", middleware.AuthRequired(cfg), h.CreatePost)
	router.Post("/posts/:id/like", middleware.AuthRequired(cfg), h.ToggleLike)
}

type feedResponse struct {
	Items []services.FeedItem `json:"items"`
	Count int                 `json:"count"`
}

// List godoc
// @Summary Fetch the feed page
// @Description Returns the newest page of posts with author and like data.
// @Description Optional center/radius narrows geographically; posts without
// @Description coordinates always pass the radius filter.
// @Tags feed
// @Produce json
// @Param city query string false "City filter"
// @Param type query string false "Post type filter"
// @Param lat query number false "Radius center latitude"
// @Param lng query number false "Radius center longitude"
// @Param radius_mi query number false "Radius in miles"
// @Success 200 {object} feedResponse
// @Router /feed [get]
func (h *FeedHandler) List(c *fiber.Ctx) error {
	filter := services.FeedFilter{
		City: c.Query("city"),
		Type: c.Query("type"),
	}
	if center := originFromQuery(c); center != nil {
		if radius, err := strconv.ParseFloat(c.Query("radius_mi"), 64); err == nil && radius > 0 {
			filter.Center = center
			filter.RadiusMi = radius
		}
	}

	items, err := h.service.FetchPage(c.UserContext(), middleware.ViewerID(c), filter)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(feedResponse{Items: items, Count: len(items)})
}

// CreatePost godoc
// @Summary Create a post
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.PostDraft true "Post content"
// @Success 201 {object} models.Post
// @Failure 401 {object} ErrorResponse
// @Router /feed/posts [post]
func (h *FeedHandler) CreatePost(c *fiber.Ctx) error {
	var draft services.PostDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post, err := h.service.CreatePost(c.UserContext(), middleware.ViewerID(c), draft)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Description Flips the viewer's like. The response reports the mutation
// @Description outcome; a rolled_back state means the write failed and no
// @Description change persisted.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} services.LikeMutation
// @Failure 401 {object} ErrorResponse
// @Router /feed/posts/{id}/like [post]
func (h *FeedHandler) ToggleLike(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil || postID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	mutation, mutErr := h.service.ToggleLike(c.UserContext(), middleware.ViewerID(c), uint(postID))
	if mutErr != nil {
		if mutation != nil {
			// The optimistic write failed; report the rolled-back state.
			return c.Status(fiber.StatusBadGateway).JSON(mutation)
		}
		return serviceError(c, mutErr)
	}

	return c.JSON(mutation)
}
