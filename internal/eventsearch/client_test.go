package eventsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spinspot/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&config.Config{EventsAPIBaseURL: url, EventsAPIKey: "test-key"})
}

func TestSearchParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events/search", r.URL.Path)
		assert.Equal(t, "jazz", r.URL.Query().Get("q"))
		assert.Equal(t, "tonight", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[
			{"name":"Blue Note Session","date":"2026-08-31","venue":"Blue Note","lat":40.73,"lng":-74.0},
			{"name":"Rooftop Set","date":"2026-08-31"},
			{"name":"","date":"2026-08-31"}
		]}`))
	}))
	defer srv.Close()

	events, err := newTestClient(srv.URL).Search(context.Background(), Query{Name: "jazz", Timeframe: "tonight"})
	require.NoError(t, err)
	require.Len(t, events, 2, "nameless entries are dropped at the boundary")

	assert.Equal(t, "Blue Note Session", events[0].Name)
	require.NotNil(t, events[0].Venue)
	assert.Equal(t, "Blue Note", *events[0].Venue)
	assert.True(t, events[0].HasCoordinates())
	assert.False(t, events[1].HasCoordinates())
	assert.Nil(t, events[1].DistanceMi, "distance is never populated by the provider client")
}

func TestSearchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), Query{Name: "jazz"})
	assert.Error(t, err)
}

func TestSearchUnconfigured(t *testing.T) {
	_, err := newTestClient("").Search(context.Background(), Query{Name: "jazz"})
	assert.Error(t, err)
}
