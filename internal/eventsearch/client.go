package eventsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/logger"
	"github.com/spinspot/server/internal/models"
)

// Query is the request shape the provider understands. The caller's location
// is deliberately absent: distance is a local concern.
type Query struct {
	Name      string
	Category  string
	Timeframe string
	Scope     string
}

// Client talks to the external event search provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.EventsAPIBaseURL,
		apiKey:  cfg.EventsAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// rawEvent is the provider's loosely-typed wire shape. It is converted to
// models.Event exactly once, here at the boundary.
type rawEvent struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Venue       string   `json:"venue"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	URL         string   `json:"url"`
}

type searchResponse struct {
	Events []rawEvent `json:"events"`
}

// Search performs one provider round-trip. Failures are returned as-is;
// the orchestrator decides what (not) to cache and never retries here.
func (c *Client) Search(ctx context.Context, q Query) ([]models.Event, error) {
	log := logger.GetLogger("eventsearch")

	if c.baseURL == "" {
		return nil, fmt.Errorf("events provider base URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/events/search", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	params := req.URL.Query()
	params.Add("q", strings.TrimSpace(q.Name))
	if q.Category != "" {
		params.Add("category", q.Category)
	}
	if q.Timeframe != "" {
		params.Add("timeframe", q.Timeframe)
	}
	if q.Scope != "" {
		params.Add("scope", q.Scope)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("X-API-Key", c.apiKey)

	log.Infof("Event search request (q=%q timeframe=%q scope=%q)", q.Name, q.Timeframe, q.Scope)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode event search response: %w", err)
	}

	events := convert(body.Events)
	log.Infof("Event search returned %d events", len(events))
	return events, nil
}

// convert validates the wire payload into typed records, dropping entries a
// client could never render (no name or date).
func convert(raw []rawEvent) []models.Event {
	events := make([]models.Event, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Date) == "" {
			continue
		}
		e := models.Event{
			Name: r.Name,
			Date: r.Date,
			Lat:  r.Lat,
			Lng:  r.Lng,
		}
		if r.Time != "" {
			e.Time = ptr(r.Time)
		}
		if r.Venue != "" {
			e.Venue = ptr(r.Venue)
		}
		if r.Description != "" {
			e.Description = ptr(r.Description)
		}
		if r.Type != "" {
			e.Type = ptr(r.Type)
		}
		if r.Address != "" {
			e.Address = ptr(r.Address)
		}
		if r.URL != "" {
			e.SourceURL = ptr(r.URL)
		}
		events = append(events, e)
	}
	return events
}

func ptr(s string) *string { return &s }
