package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/internal/realtime"
	"github.com/spinspot/server/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeedStore is an in-memory FeedStore. The refetch goroutine started by
// FeedService.Start calls into it concurrently with test assertions, so all
// state is mutex-guarded.
type fakeFeedStore struct {
	mu    sync.Mutex
	posts []models.Post
	users []models.User
	likes []models.Like

	nextLikeID  uint
	nextPostID  uint
	failWrites  bool
	listCalls   int
	userBatches int
	likeBatches int

	// listHook, when set, runs after each ListPosts (outside the lock) so
	// tests can stall a refetch mid-flight.
	listHook func()
}

func newFakeFeedStore() *fakeFeedStore {
	return &fakeFeedStore{nextLikeID: 1, nextPostID: 1}
}

func (f *fakeFeedStore) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeFeedStore) setListHook(hook func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHook = hook
}

func (f *fakeFeedStore) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	f.mu.Lock()
	f.listCalls++
	var out []models.Post
	for _, p := range f.posts {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.City != "" && (p.City == nil || *p.City != filter.City) {
			continue
		}
		out = append(out, p)
	}
	// Newest first, as the real store orders.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeFeedStore) GetUsersByID(ctx context.Context, ids []uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userBatches++
	idSet := map[uint]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	var out []models.User
	for _, u := range f.users {
		if idSet[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeFeedStore) ListLikesForPosts(ctx context.Context, postIDs []uint) ([]models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeBatches++
	idSet := map[uint]bool{}
	for _, id := range postIDs {
		idSet[id] = true
	}
	var out []models.Like
	for _, l := range f.likes {
		if idSet[l.PostID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeFeedStore) FindLike(ctx context.Context, postID, userID uint) (*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.PostID == postID && l.UserID == userID {
			like := l
			return &like, nil
		}
	}
	return nil, nil
}

func (f *fakeFeedStore) CreateLike(ctx context.Context, like *models.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("store write failed")
	}
	like.ID = f.nextLikeID
	f.nextLikeID++
	f.likes = append(f.likes, *like)
	return nil
}

func (f *fakeFeedStore) DeleteLike(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("store write failed")
	}
	for i, l := range f.likes {
		if l.ID == id {
			f.likes = append(f.likes[:i], f.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeFeedStore) CreatePost(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("store write failed")
	}
	post.ID = f.nextPostID
	f.nextPostID++
	post.CreatedAt = time.Now()
	f.posts = append(f.posts, *post)
	return nil
}

func seedFeedStore() *fakeFeedStore {
	f := newFakeFeedStore()
	f.users = []models.User{
		{BaseModel: models.BaseModel{ID: 1}, Username: "ana", DisplayName: "Ana"},
		{BaseModel: models.BaseModel{ID: 2}, Username: "ben", DisplayName: "Ben"},
	}
	city := "Portland"
	f.posts = []models.Post{
		{ID: 1, UserID: 1, Type: "checkin", City: &city, Lat: floatPtr(45.52), Lng: floatPtr(-122.68)},
		{ID: 2, UserID: 2, Type: "checkin"},
		{ID: 3, UserID: 1, Type: "review", City: &city, Lat: floatPtr(45.60), Lng: floatPtr(-122.60)},
	}
	f.nextPostID = 4
	f.likes = []models.Like{
		{ID: 1, PostID: 1, UserID: 2},
		{ID: 2, PostID: 1, UserID: 1},
	}
	f.nextLikeID = 3
	return f
}

func TestFetchPageJoinsAuthorsAndLikes(t *testing.T) {
	store := seedFeedStore()
	svc := NewFeedService(store, nil, nil)

	items, err := svc.FetchPage(context.Background(), 2, FeedFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Newest first.
	assert.Equal(t, uint(3), items[0].ID)
	assert.Equal(t, "ana", items[0].AuthorUsername)

	var post1 *FeedItem
	for i := range items {
		if items[i].ID == 1 {
			post1 = &items[i]
		}
	}
	require.NotNil(t, post1)
	assert.Equal(t, 2, post1.LikeCount)
	assert.True(t, post1.LikedByViewer)

	assert.Equal(t, 1, store.userBatches, "authors load in one batch, no N+1")
	assert.Equal(t, 1, store.likeBatches, "likes load in one batch, no N+1")
}

func TestFetchPageRadiusFilterFailOpen(t *testing.T) {
	store := seedFeedStore()
	svc := NewFeedService(store, nil, nil)

	center := geo.Point{Lat: 45.52, Lng: -122.68}
	// Post 3 is ~7 miles out; a 5 mile radius keeps post 1 (at the center)
	// and post 2 (no coordinates, fail-open), drops post 3.
	items, err := svc.FetchPage(context.Background(), 0, FeedFilter{Center: &center, RadiusMi: 5})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(2), items[0].ID, "coordinate-less post is never excluded")
	assert.Equal(t, uint(1), items[1].ID)
}

func TestFetchPageRadiusBoundaryInclusive(t *testing.T) {
	store := newFakeFeedStore()
	store.users = []models.User{{BaseModel: models.BaseModel{ID: 1}, Username: "ana"}}
	store.posts = []models.Post{
		{ID: 1, UserID: 1, Type: "checkin", Lat: floatPtr(0), Lng: floatPtr(1)},
	}
	svc := NewFeedService(store, nil, nil)

	center := geo.Point{Lat: 0, Lng: 0}
	exact := geo.Distance(center, geo.Point{Lat: 0, Lng: 1})

	items, err := svc.FetchPage(context.Background(), 0, FeedFilter{Center: &center, RadiusMi: exact})
	require.NoError(t, err)
	assert.Len(t, items, 1, "a post at exactly the radius is included")
}

func TestToggleLikeRoundTripRestoresState(t *testing.T) {
	store := seedFeedStore()
	svc := NewFeedService(store, nil, nil)

	_, err := svc.FetchPage(context.Background(), 2, FeedFilter{})
	require.NoError(t, err)

	before := pageItem(t, svc, 3)
	assert.Equal(t, 0, before.LikeCount)
	assert.False(t, before.LikedByViewer)

	like, err := svc.ToggleLike(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, MutationConfirmed, like.State)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	unlike, err := svc.ToggleLike(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, MutationConfirmed, unlike.State)
	assert.False(t, unlike.Liked)

	after := pageItem(t, svc, 3)
	assert.Equal(t, before.LikeCount, after.LikeCount, "like then unlike restores the count")
	assert.Equal(t, before.LikedByViewer, after.LikedByViewer)
}

func TestToggleLikeRollsBackOnWriteFailure(t *testing.T) {
	store := seedFeedStore()
	svc := NewFeedService(store, nil, nil)

	_, err := svc.FetchPage(context.Background(), 2, FeedFilter{})
	require.NoError(t, err)
	before := pageItem(t, svc, 3)

	store.failWrites = true
	mutation, err := svc.ToggleLike(context.Background(), 2, 3)
	assert.Error(t, err)
	require.NotNil(t, mutation)
	assert.Equal(t, MutationRolledBack, mutation.State)

	after := pageItem(t, svc, 3)
	assert.Equal(t, before.LikeCount, after.LikeCount, "failed write leaves local state untouched")
	assert.Equal(t, before.LikedByViewer, after.LikedByViewer)
}

func TestToggleLikeRequiresAuth(t *testing.T) {
	svc := NewFeedService(seedFeedStore(), nil, nil)
	_, err := svc.ToggleLike(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreatePostRequiresAuthAndType(t *testing.T) {
	svc := NewFeedService(seedFeedStore(), nil, nil)

	_, err := svc.CreatePost(context.Background(), 0, PostDraft{Type: "checkin"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreatePost(context.Background(), 1, PostDraft{})
	assert.ErrorIs(t, err, ErrMissingQuery)
}

func TestCreatePostPublishesInsertEvent(t *testing.T) {
	store := seedFeedStore()
	hub := realtime.NewHub()
	svc := NewFeedService(store, hub, nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	post, err := svc.CreatePost(context.Background(), 1, PostDraft{Type: "checkin"})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	select {
	case event := <-ch:
		assert.Equal(t, post.ID, event.PostID)
		assert.Equal(t, uint(1), event.UserID)
	case <-time.After(time.Second):
		t.Fatal("expected an insert notification")
	}
}

func TestInsertNotificationTriggersRefetch(t *testing.T) {
	store := seedFeedStore()
	hub := realtime.NewHub()
	svc := NewFeedService(store, hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Close()

	_, err := svc.FetchPage(ctx, 2, FeedFilter{})
	require.NoError(t, err)
	fetched := store.listCount()

	hub.Publish(realtime.PostEvent{PostID: 99})

	assert.Eventually(t, func() bool {
		return store.listCount() > fetched
	}, time.Second, 10*time.Millisecond, "a notification must trigger a full page refetch")
}

func TestNotificationBurstCoalescesRefetches(t *testing.T) {
	store := seedFeedStore()
	hub := realtime.NewHub()
	svc := NewFeedService(store, hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Close()

	_, err := svc.FetchPage(ctx, 2, FeedFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, store.listCount())

	// Stall the next refetch so the remaining notifications queue behind it.
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	store.setListHook(func() {
		entered <- struct{}{}
		<-release
	})

	hub.Publish(realtime.PostEvent{PostID: 90})
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("expected a refetch to start")
	}

	for i := 0; i < 4; i++ {
		hub.Publish(realtime.PostEvent{PostID: uint(91 + i)})
	}
	close(release)

	// One stalled refetch plus one coalesced refetch for the whole burst.
	assert.Eventually(t, func() bool {
		return store.listCount() == 3
	}, time.Second, 10*time.Millisecond, "queued notifications must collapse into one refetch")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, store.listCount(), "no extra refetches after the burst drains")
}

func pageItem(t *testing.T, svc *FeedService, postID uint) FeedItem {
	t.Helper()
	for _, item := range svc.Page() {
		if item.ID == postID {
			return item
		}
	}
	t.Fatalf("post %d not on page", postID)
	return FeedItem{}
}
