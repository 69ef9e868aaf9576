package services

import (
	"context"
	"fmt"

	"github.com/spinspot/server/internal/models"
)

// MutationState tracks an optimistic mutation's lifecycle.
type MutationState string

const (
	// MutationPending means the local delta is applied but the remote
	// write has not completed.
	MutationPending MutationState = "pending"
	// MutationConfirmed means the remote write succeeded.
	MutationConfirmed MutationState = "confirmed"
	// MutationRolledBack means the remote write failed and the
	// compensating inverse delta was applied locally.
	MutationRolledBack MutationState = "rolled_back"
)

// LikeMutation is one optimistic like/unlike with its outcome.
type LikeMutation struct {
	PostID    uint          `json:"post_id"`
	Liked     bool          `json:"liked"`
	LikeCount int           `json:"like_count"`
	State     MutationState `json:"state"`
}

// ToggleLike flips the viewer's like on a post as a two-phase optimistic
// update: the local page delta is applied immediately, then the remote
// write runs; on failure the inverse delta restores the local state.
func (s *FeedService) ToggleLike(ctx context.Context, viewerID, postID uint) (*LikeMutation, error) {
	if viewerID == 0 {
		return nil, ErrUnauthenticated
	}

	existing, err := s.store.FindLike(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("like lookup: %w", err)
	}

	liking := existing == nil
	mutation := &LikeMutation{PostID: postID, Liked: liking, State: MutationPending}
	mutation.LikeCount = s.applyLikeDelta(postID, liking)

	if liking {
		err = s.store.CreateLike(ctx, &models.Like{PostID: postID, UserID: viewerID})
	} else {
		err = s.store.DeleteLike(ctx, existing.ID)
	}

	if err != nil {
		mutation.Liked = !liking
		mutation.LikeCount = s.applyLikeDelta(postID, !liking)
		mutation.State = MutationRolledBack
		return mutation, fmt.Errorf("like write: %w", err)
	}

	mutation.State = MutationConfirmed
	return mutation, nil
}

// applyLikeDelta adjusts the locally cached page and returns the resulting
// like count for postID (0 when the post is not on the page).
func (s *FeedService) applyLikeDelta(postID uint, liked bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.page {
		if s.page[i].ID != postID {
			continue
		}
		if liked {
			s.page[i].LikeCount++
		} else if s.page[i].LikeCount > 0 {
			s.page[i].LikeCount--
		}
		s.page[i].LikedByViewer = liked
		return s.page[i].LikeCount
	}
	return 0
}
