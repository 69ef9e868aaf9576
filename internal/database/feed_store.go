package database

import (
	"context"
	"errors"

	"github.com/spinspot/server/internal/models"
	"gorm.io/gorm"
)

// FeedStore is the gorm-backed implementation of the feed's store interface.
type FeedStore struct {
	db *DB
}

// NewFeedStore creates a FeedStore on the shared connection.
func NewFeedStore(db *DB) *FeedStore {
	return &FeedStore{db: db}
}

// ListPosts returns posts newest-first, optionally narrowed by city and type.
func (s *FeedStore) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetUsersByID loads user rows for the given IDs in one query.
func (s *FeedStore) GetUsersByID(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListLikesForPosts loads all like rows for the given posts in one query.
func (s *FeedStore) ListLikesForPosts(ctx context.Context, postIDs []uint) ([]models.Like, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likes []models.Like
	if err := s.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// FindLike returns the viewer's like on a post, or nil when none exists.
func (s *FeedStore) FindLike(ctx context.Context, postID, userID uint) (*models.Like, error) {
	var like models.Like
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

func (s *FeedStore) CreateLike(ctx context.Context, like *models.Like) error {
	return s.db.WithContext(ctx).Create(like).Error
}

func (s *FeedStore) DeleteLike(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Like{}, id).Error
}

func (s *FeedStore) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}
