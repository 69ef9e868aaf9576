package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/models"
	"gorm.io/gorm"
)

// SpotService handles saved spots and reviews.
type SpotService struct {
	db *database.DB
}

// NewSpotService creates a new SpotService.
func NewSpotService(db *database.DB) *SpotService {
	return &SpotService{db: db}
}

// SaveSpotInput is the caller-supplied shape for bookmarking a spot.
type SaveSpotInput struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Category *string  `json:"category,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// ToggleSave bookmarks a spot for the viewer, or removes the bookmark when
// one already exists. Returns whether the spot is saved afterwards.
func (s *SpotService) ToggleSave(ctx context.Context, viewerID uint, input SaveSpotInput) (bool, error) {
	if viewerID == 0 {
		return false, ErrUnauthenticated
	}
	if input.PlaceID == "" || input.Name == "" {
		return false, fmt.Errorf("%w: place_id and name are required", ErrMissingQuery)
	}

	var existing models.SavedSpot
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND place_id = ?", viewerID, input.PlaceID).
		First(&existing).Error

	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return true, fmt.Errorf("unsave spot: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		saved := models.SavedSpot{
			UserID:   viewerID,
			PlaceID:  input.PlaceID,
			Name:     input.Name,
			Category: input.Category,
			Lat:      input.Lat,
			Lng:      input.Lng,
		}
		if err := s.db.WithContext(ctx).Create(&saved).Error; err != nil {
			return false, fmt.Errorf("save spot: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("saved spot lookup: %w", err)
	}
}

// ListSaved returns the viewer's bookmarks, newest first.
func (s *SpotService) ListSaved(ctx context.Context, viewerID uint) ([]models.SavedSpot, error) {
	if viewerID == 0 {
		return nil, ErrUnauthenticated
	}

	var saved []models.SavedSpot
	err := s.db.WithContext(ctx).
		Where("user_id = ?", viewerID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("list saved spots: %w", err)
	}
	return saved, nil
}

// ReviewInput is the caller-supplied shape for a place review.
type ReviewInput struct {
	PlaceID string  `json:"place_id"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// CreateReview records the viewer's review of a place.
func (s *SpotService) CreateReview(ctx context.Context, viewerID uint, input ReviewInput) (*models.Review, error) {
	if viewerID == 0 {
		return nil, ErrUnauthenticated
	}
	if input.PlaceID == "" {
		return nil, fmt.Errorf("%w: place_id is required", ErrMissingQuery)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review := models.Review{
		UserID:  viewerID,
		PlaceID: input.PlaceID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

// ListReviews returns reviews for a place, newest first.
func (s *SpotService) ListReviews(ctx context.Context, placeID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
