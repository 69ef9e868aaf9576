package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/spinspot/server/internal/logger"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/internal/realtime"
	"github.com/spinspot/server/pkg/geo"
)

// FeedPageSize is the fixed page bound for feed queries.
const FeedPageSize = 50

// FeedStore is the data store collaborator behind the feed: filtered
// queries, inserts and deletes against the post/like/profile collections.
type FeedStore interface {
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	GetUsersByID(ctx context.Context, ids []uint) ([]models.User, error)
	ListLikesForPosts(ctx context.Context, postIDs []uint) ([]models.Like, error)
	FindLike(ctx context.Context, postID, userID uint) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id uint) error
	CreatePost(ctx context.Context, post *models.Post) error
}

// FeedFilter is the caller-facing page filter. Center+RadiusMi adds a
// fail-open geographic cut: posts without coordinates are never excluded.
type FeedFilter struct {
	City     string
	Type     string
	Center   *geo.Point
	RadiusMi float64
}

// FeedItem is a post merged with its author profile and like-derived fields.
// The derived fields are recomputed on every fetch, never persisted.
type FeedItem struct {
	models.Post
	AuthorUsername    string  `json:"author_username"`
	AuthorDisplayName string  `json:"author_display_name"`
	AuthorAvatarURL   *string `json:"author_avatar_url,omitempty"`
	LikeCount         int     `json:"like_count"`
	LikedByViewer     bool    `json:"liked_by_viewer"`
}

// PostDraft is the caller-supplied shape for a new post.
type PostDraft struct {
	Type      string   `json:"type"`
	Content   *string  `json:"content,omitempty"`
	PlaceName *string  `json:"place_name,omitempty"`
	City      *string  `json:"city,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// FeedService fetches feed pages, maintains the locally cached page that
// optimistic mutations apply to, and refetches on post-insert notifications.
type FeedService struct {
	store   FeedStore
	hub     *realtime.Hub
	streaks *StreakService

	mu         sync.Mutex
	page       []FeedItem
	lastViewer uint
	lastFilter FeedFilter
	hasFetched bool

	cancelSub func()
}

// NewFeedService creates a FeedService. The hub may be nil in tests; streaks
// is optional and updated best-effort.
func NewFeedService(store FeedStore, hub *realtime.Hub, streaks *StreakService) *FeedService {
	return &FeedService{
		store:   store,
		hub:     hub,
		streaks: streaks,
	}
}

// Start subscribes to the post-insert stream. Notifications trigger a full
// page refetch with the last-used filter; there is no incremental merge, and
// a burst of queued notifications collapses into a single refetch.
func (s *FeedService) Start(ctx context.Context) {
	if s.hub == nil {
		return
	}

	log := logger.GetLogger("feed")
	ch, cancel := s.hub.Subscribe()
	s.cancelSub = cancel

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}

				// Coalesce bursts: drain queued notifications so one
				// refetch covers all of them.
			drain:
				for {
					select {
					case _, ok := <-ch:
						if !ok {
							return
						}
					default:
						break drain
					}
				}

				s.mu.Lock()
				viewer, filter, fetched := s.lastViewer, s.lastFilter, s.hasFetched
				s.mu.Unlock()
				if !fetched {
					continue
				}
				if _, err := s.FetchPage(ctx, viewer, filter); err != nil {
					log.Warnf("feed refetch after insert notification failed: %v", err)
				}
			}
		}
	}()
}

// Close releases the stream subscription.
func (s *FeedService) Close() {
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
}

// FetchPage returns the newest page of posts matching filter, enriched with
// author and like data. Author profiles and likes are loaded in one batch
// request each. The radius filter only removes; creation-descending order
// is preserved.
func (s *FeedService) FetchPage(ctx context.Context, viewerID uint, filter FeedFilter) ([]FeedItem, error) {
	posts, err := s.store.ListPosts(ctx, models.PostFilter{
		City:  filter.City,
		Type:  filter.Type,
		Limit: FeedPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("feed query: %w", err)
	}

	authorIDs := lo.Uniq(lo.Map(posts, func(p models.Post, _ int) uint { return p.UserID }))
	authors, err := s.store.GetUsersByID(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("feed author batch: %w", err)
	}
	authorsByID := lo.KeyBy(authors, func(u models.User) uint { return u.ID })

	postIDs := lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })
	likes, err := s.store.ListLikesForPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("feed like batch: %w", err)
	}

	likeCounts := make(map[uint]int, len(posts))
	likedByViewer := make(map[uint]bool, len(posts))
	for _, like := range likes {
		likeCounts[like.PostID]++
		if viewerID != 0 && like.UserID == viewerID {
			likedByViewer[like.PostID] = true
		}
	}

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		if !withinRadius(post, filter) {
			continue
		}

		item := FeedItem{
			Post:          post,
			LikeCount:     likeCounts[post.ID],
			LikedByViewer: likedByViewer[post.ID],
		}
		if author, ok := authorsByID[post.UserID]; ok {
			item.AuthorUsername = author.Username
			item.AuthorDisplayName = author.DisplayName
			item.AuthorAvatarURL = author.AvatarURL
		}
		items = append(items, item)
	}

	s.mu.Lock()
	s.page = items
	s.lastViewer = viewerID
	s.lastFilter = filter
	s.hasFetched = true
	s.mu.Unlock()

	return items, nil
}

// Page returns a copy of the locally cached page.
func (s *FeedService) Page() []FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := make([]FeedItem, len(s.page))
	copy(page, s.page)
	return page
}

// withinRadius applies the fail-open geographic cut: posts without
// coordinates always pass, and the boundary is inclusive.
func withinRadius(post models.Post, filter FeedFilter) bool {
	if filter.Center == nil || filter.RadiusMi <= 0 {
		return true
	}
	if post.Lat == nil || post.Lng == nil {
		return true
	}
	d := geo.Distance(*filter.Center, geo.Point{Lat: *post.Lat, Lng: *post.Lng})
	return d <= filter.RadiusMi
}

// CreatePost inserts a new post under the viewer's identity and publishes
// an insert notification. The local page is not spliced; subscribers
// reconcile through the notification-triggered refetch, which avoids
// duplicate entries. Streak updates run best-effort.
func (s *FeedService) CreatePost(ctx context.Context, viewerID uint, draft PostDraft) (*models.Post, error) {
	if viewerID == 0 {
		return nil, ErrUnauthenticated
	}
	if draft.Type == "" {
		return nil, fmt.Errorf("%w: post type is required", ErrMissingQuery)
	}

	post := &models.Post{
		UserID:    viewerID,
		Type:      draft.Type,
		Content:   draft.Content,
		PlaceName: draft.PlaceName,
		City:      draft.City,
		Lat:       draft.Lat,
		Lng:       draft.Lng,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.PostEvent{
			PostID:    post.ID,
			PublicID:  post.PublicID,
			UserID:    post.UserID,
			Type:      post.Type,
			CreatedAt: post.CreatedAt,
		})
	}

	if s.streaks != nil {
		BestEffort("streak update", func() error {
			return s.streaks.RecordActivity(ctx, viewerID)
		})
	}

	return post, nil
}
