package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spinspot/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient(&config.Config{PlacesAPIBaseURL: url, PlacesAPIKey: "test-key"})
	c.pageDelay = 0 // no rate-limit spacing in tests
	return c
}

func TestAutocomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/autocomplete", r.URL.Path)
		assert.Equal(t, "port", r.URL.Query().Get("input"))
		assert.Equal(t, "locality", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"predictions":[{"place_id":"p1","description":"Portland, OR"},{"place_id":"p2","description":"Portsmouth, NH"}]}`))
	}))
	defer srv.Close()

	preds, err := newTestClient(srv.URL).Autocomplete(context.Background(), "port", AutocompleteOptions{Type: "locality"})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "Portland, OR", preds[0].Description)
}

func TestCitiesInRegionDedupesAndSorts(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"cities":["Salem","Eugene","Salem"],"has_more":true}`))
		default:
			_, _ = w.Write([]byte(`{"cities":["Bend","Eugene"],"has_more":false}`))
		}
	}))
	defer srv.Close()

	cities, err := newTestClient(srv.URL).CitiesInRegion(context.Background(), "OR", "US")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bend", "Eugene", "Salem"}, cities)
	assert.Equal(t, 2, page)
}

func TestCitiesInRegionStopsAtPageCap(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(fmt.Sprintf(`{"cities":["City%d"],"has_more":true}`, calls)))
	}))
	defer srv.Close()

	cities, err := newTestClient(srv.URL).CitiesInRegion(context.Background(), "OR", "US")
	require.NoError(t, err)
	assert.Equal(t, maxCityPages, calls)
	assert.Len(t, cities, maxCityPages)
}

func TestRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"place_id":"p1","name":"Portland","city":"Portland","region":"OR","country":"US"}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).PlaceDetails(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Portland", detail.City)
	assert.Equal(t, 2, calls)
}

func TestNoRetryOnHardFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PlaceDetails(context.Background(), "p1")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
