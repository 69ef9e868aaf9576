package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/logger"
)

const (
	// maxCityPages caps cities-in-region pagination.
	maxCityPages = 3
	// interPageDelay honors the provider's documented rate-limit contract.
	interPageDelay = 2 * time.Second
)

// Prediction is one ranked autocomplete suggestion.
type Prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// PlaceDetail is a resolved locality record.
type PlaceDetail struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// Client talks to the external place/locality provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pageDelay  time.Duration
}

// NewClient builds a Client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.PlacesAPIBaseURL,
		apiKey:  cfg.PlacesAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		pageDelay: interPageDelay,
	}
}

// AutocompleteOptions narrows autocomplete results.
type AutocompleteOptions struct {
	Type    string // e.g. "locality"
	Country string // ISO country restriction
}

// Autocomplete returns ranked predictions for a partial query.
func (c *Client) Autocomplete(ctx context.Context, query string, opts AutocompleteOptions) ([]Prediction, error) {
	params := map[string]string{"input": strings.TrimSpace(query)}
	if opts.Type != "" {
		params["type"] = opts.Type
	}
	if opts.Country != "" {
		params["country"] = opts.Country
	}

	var body struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := c.getJSON(ctx, "/v1/autocomplete", params, &body); err != nil {
		return nil, err
	}
	return body.Predictions, nil
}

// PlaceDetails resolves a place ID to its locality record and coordinates.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place ID is required")
	}

	var detail PlaceDetail
	if err := c.getJSON(ctx, "/v1/places/"+placeID, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CitiesInRegion pages through the provider's locality listing for a region
// and returns a deduplicated, alphabetically sorted city list. Page count is
// capped and pages are spaced out per the provider's rate-limit contract.
func (c *Client) CitiesInRegion(ctx context.Context, region, country string) ([]string, error) {
	log := logger.GetLogger("places")

	seen := make(map[string]bool)
	var cities []string

	for page := 1; page <= maxCityPages; page++ {
		if page > 1 {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var body struct {
			Cities  []string `json:"cities"`
			HasMore bool     `json:"has_more"`
		}
		params := map[string]string{
			"region":  region,
			"country": country,
			"page":    strconv.Itoa(page),
		}
		if err := c.getJSON(ctx, "/v1/cities", params, &body); err != nil {
			return nil, err
		}

		for _, city := range body.Cities {
			city = strings.TrimSpace(city)
			if city == "" || seen[city] {
				continue
			}
			seen[city] = true
			cities = append(cities, city)
		}

		if !body.HasMore {
			break
		}
		if page == maxCityPages {
			log.Warnf("city listing for %s/%s truncated at page cap %d", region, country, maxCityPages)
		}
	}

	sort.Strings(cities)
	return cities, nil
}

// getJSON performs a GET with 429-aware exponential backoff and decodes the
// body into out. Non-429 failures are not retried.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("places provider base URL not configured")
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		q := req.URL.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("places request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("places provider rate limited")
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("places provider returned status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode places response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	return backoff.Retry(operation, policy)
}
