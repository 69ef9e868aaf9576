package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spinspot/server/internal/cache"
	"github.com/spinspot/server/internal/eventsearch"
	"github.com/spinspot/server/internal/logger"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/pkg/geo"
)

// EventProvider is the external search collaborator.
type EventProvider interface {
	Search(ctx context.Context, q eventsearch.Query) ([]models.Event, error)
}

// SearchParams describes one event search. Origin is the caller's location;
// it never participates in cache identity.
type SearchParams struct {
	Name      string
	Category  string
	Timeframe string
	Scope     string
	Origin    *geo.Point
}

// SearchService coordinates cache lookup, remote fetch, distance enrichment
// and sorting behind a single entry point.
type SearchService struct {
	provider EventProvider
	cache    *cache.ResultCache

	mu      sync.Mutex
	loading bool
	lastErr error
}

// NewSearchService creates a SearchService over the given provider and cache.
func NewSearchService(provider EventProvider, resultCache *cache.ResultCache) *SearchService {
	return &SearchService{
		provider: provider,
		cache:    resultCache,
	}
}

// Search returns enriched, distance-sorted events for the given parameters.
// Cached payloads are served raw and re-enriched per caller; provider
// failures return an empty slice, are never cached and never retried.
func (s *SearchService) Search(ctx context.Context, p SearchParams) ([]models.Event, error) {
	log := logger.GetLogger("search")

	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Timeframe) == "" {
		return nil, fmt.Errorf("%w: name and timeframe are required", ErrMissingQuery)
	}

	key := cache.SearchKey{
		Name:      p.Name,
		Category:  p.Category,
		Timeframe: p.Timeframe,
		Scope:     p.Scope,
	}

	if cached, ok := s.cache.Get(key); ok {
		log.Infof("cache hit for %q/%s", p.Name, p.Timeframe)
		return enrich(cached, p.Origin), nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	events, err := s.provider.Search(ctx, eventsearch.Query{
		Name:      p.Name,
		Category:  p.Category,
		Timeframe: p.Timeframe,
		Scope:     p.Scope,
	})
	if err != nil {
		s.setError(err)
		log.Warnf("event search failed for %q/%s: %v", p.Name, p.Timeframe, err)
		return []models.Event{}, fmt.Errorf("event search: %w", err)
	}
	s.setError(nil)

	// The cache holds the raw payload; distance is a per-caller derivation.
	s.cache.Put(key, events)

	return enrich(events, p.Origin), nil
}

// Loading reports whether a remote fetch is in flight.
func (s *SearchService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent provider failure, nil after a success.
func (s *SearchService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *SearchService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *SearchService) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// enrich copies the events, attaches distances where both sides have
// coordinates and stable-sorts ascending by distance. Events without a
// distance keep their input order after all distance-bearing ones.
func enrich(events []models.Event, origin *geo.Point) []models.Event {
	enriched := make([]models.Event, len(events))
	copy(enriched, events)

	if origin != nil {
		for i := range enriched {
			if enriched[i].HasCoordinates() {
				d := geo.Distance(*origin, geo.Point{Lat: *enriched[i].Lat, Lng: *enriched[i].Lng})
				enriched[i].DistanceMi = &d
			}
		}
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		di, dj := enriched[i].DistanceMi, enriched[j].DistanceMi
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return enriched
}
