package services

import (
	"context"
	"errors"
	"testing"

	"github.com/spinspot/server/internal/cache"
	"github.com/spinspot/server/internal/eventsearch"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls  int
	events []models.Event
	err    error
}

func (f *fakeProvider) Search(ctx context.Context, q eventsearch.Query) ([]models.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func floatPtr(f float64) *float64 { return &f }

func eventAt(name string, lat, lng float64) models.Event {
	return models.Event{Name: name, Date: "2026-08-31", Lat: floatPtr(lat), Lng: floatPtr(lng)}
}

func TestSearchRequiresNameAndTimeframe(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSearchService(provider, cache.New())

	_, err := svc.Search(context.Background(), SearchParams{Name: "", Timeframe: "tonight"})
	assert.ErrorIs(t, err, ErrMissingQuery)

	_, err = svc.Search(context.Background(), SearchParams{Name: "jazz", Timeframe: ""})
	assert.ErrorIs(t, err, ErrMissingQuery)

	assert.Equal(t, 0, provider.calls, "validation failures must not reach the provider")
}

func TestRepeatSearchWithinTTLFetchesOnce(t *testing.T) {
	provider := &fakeProvider{events: []models.Event{{Name: "Show", Date: "2026-08-31"}}}
	svc := NewSearchService(provider, cache.New())

	params := SearchParams{Name: "jazz", Category: "music", Timeframe: "tonight", Scope: "city"}
	_, err := svc.Search(context.Background(), params)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
}

func TestTimeframeChangeAlwaysFetches(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewSearchService(provider, cache.New())

	_, err := svc.Search(context.Background(), SearchParams{Name: "jazz", Timeframe: "tonight"})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), SearchParams{Name: "jazz", Timeframe: "weekend"})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls)
}

func TestOriginIsNotPartOfCacheIdentity(t *testing.T) {
	provider := &fakeProvider{events: []models.Event{eventAt("Near", 0, 0.1)}}
	svc := NewSearchService(provider, cache.New())

	first, err := svc.Search(context.Background(), SearchParams{
		Name: "jazz", Timeframe: "tonight", Origin: &geo.Point{Lat: 0, Lng: 0},
	})
	require.NoError(t, err)

	second, err := svc.Search(context.Background(), SearchParams{
		Name: "jazz", Timeframe: "tonight", Origin: &geo.Point{Lat: 1, Lng: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "the cache hit is shared across caller positions")
	require.NotNil(t, first[0].DistanceMi)
	require.NotNil(t, second[0].DistanceMi)
	assert.NotEqual(t, *first[0].DistanceMi, *second[0].DistanceMi, "distance is recomputed per caller")
}

func TestEnrichmentRanksCloserFirst(t *testing.T) {
	provider := &fakeProvider{events: []models.Event{
		eventAt("Far", 1, 0),
		eventAt("Near", 0, 1),
	}}
	svc := NewSearchService(provider, cache.New())

	got, err := svc.Search(context.Background(), SearchParams{
		Name: "jazz", Timeframe: "tonight", Origin: &geo.Point{Lat: 0, Lng: 0.5},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Near", got[0].Name)
	assert.Equal(t, "Far", got[1].Name)
	assert.Less(t, *got[0].DistanceMi, *got[1].DistanceMi)
}

func TestEventsWithoutCoordinatesSortLast(t *testing.T) {
	provider := &fakeProvider{events: []models.Event{
		{Name: "Unknown A", Date: "2026-08-31"},
		eventAt("Located", 0, 0.2),
		{Name: "Unknown B", Date: "2026-08-31"},
	}}
	svc := NewSearchService(provider, cache.New())

	got, err := svc.Search(context.Background(), SearchParams{
		Name: "jazz", Timeframe: "tonight", Origin: &geo.Point{Lat: 0, Lng: 0},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Located", got[0].Name)
	// Stable sort: coordinate-less events keep their relative input order.
	assert.Equal(t, "Unknown A", got[1].Name)
	assert.Equal(t, "Unknown B", got[2].Name)
}

func TestNoOriginLeavesDistanceUnsetAndOrderStable(t *testing.T) {
	provider := &fakeProvider{events: []models.Event{
		eventAt("First", 5, 5),
		eventAt("Second", 1, 1),
	}}
	svc := NewSearchService(provider, cache.New())

	got, err := svc.Search(context.Background(), SearchParams{Name: "jazz", Timeframe: "tonight"})
	require.NoError(t, err)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
	assert.Nil(t, got[0].DistanceMi)
}

func TestFailedFetchIsNotCached(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider unreachable")}
	svc := NewSearchService(provider, cache.New())

	params := SearchParams{Name: "jazz", Timeframe: "tonight"}
	got, err := svc.Search(context.Background(), params)
	assert.Error(t, err)
	assert.Empty(t, got, "failures surface as an empty result set")
	assert.Error(t, svc.LastError())

	// Provider recovers: the next call must fetch again, not serve a hit.
	provider.err = nil
	provider.events = []models.Event{{Name: "Show", Date: "2026-08-31"}}
	got, err = svc.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, provider.calls)
	assert.NoError(t, svc.LastError())
}

func TestCachedPayloadStaysRaw(t *testing.T) {
	c := cache.New()
	provider := &fakeProvider{events: []models.Event{eventAt("Show", 0, 1)}}
	svc := NewSearchService(provider, c)

	_, err := svc.Search(context.Background(), SearchParams{
		Name: "jazz", Timeframe: "tonight", Origin: &geo.Point{Lat: 0, Lng: 0},
	})
	require.NoError(t, err)

	cached, ok := c.Get(cache.SearchKey{Name: "jazz", Timeframe: "tonight"})
	require.True(t, ok)
	assert.Nil(t, cached[0].DistanceMi, "enrichment must not leak into the cached payload")
}
