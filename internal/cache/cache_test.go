package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/spinspot/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New()
	_, ok := c.Get(SearchKey{Name: "jazz", Timeframe: "tonight"})
	assert.False(t, ok)
}

func TestPutThenGetWithinTTL(t *testing.T) {
	c := New()
	key := SearchKey{Name: "jazz", Category: "music", Timeframe: "tonight", Scope: "city"}
	events := []models.Event{{Name: "Blue Note Session", Date: "2026-08-31"}}

	c.Put(key, events)

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Note Session", got[0].Name)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(WithClock(func() time.Time { return clock() }))

	key := SearchKey{Name: "jazz", Timeframe: "tonight"}
	c.Put(key, []models.Event{{Name: "Late Show"}})

	// Advance past the TTL; the entry must read as absent and be dropped.
	now = now.Add(DefaultTTL + time.Second)
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestEntryFreshAtExactTTLBoundary(t *testing.T) {
	now := time.Now()
	c := New(WithClock(func() time.Time { return now }))

	key := SearchKey{Name: "jazz", Timeframe: "tonight"}
	c.Put(key, []models.Event{{Name: "Late Show"}})

	// now - storedAt == TTL is still fresh; only strictly greater expires.
	now = now.Add(DefaultTTL)
	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	c := New()
	key := SearchKey{Name: "jazz", Timeframe: "tonight"}

	c.Put(key, []models.Event{{Name: "First"}})
	c.Put(key, []models.Event{{Name: "Second"}})

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Second", got[0].Name)
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	c := New()
	tonight := SearchKey{Name: "jazz", Timeframe: "tonight"}
	weekend := SearchKey{Name: "jazz", Timeframe: "weekend"}

	c.Put(tonight, []models.Event{{Name: "Tonight Show"}})

	_, ok := c.Get(weekend)
	assert.False(t, ok, "a timeframe change must not hit the other key")
}

func TestEvictionKeepsCacheBounded(t *testing.T) {
	now := time.Now()
	c := New(WithMaxEntries(3), WithClock(func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}))

	for i := 0; i < 5; i++ {
		c.Put(SearchKey{Name: fmt.Sprintf("q%d", i)}, nil)
	}

	assert.Equal(t, 3, c.Len())
	// The oldest keys were evicted in insertion order.
	_, ok := c.Get(SearchKey{Name: "q0"})
	assert.False(t, ok)
	_, ok = c.Get(SearchKey{Name: "q4"})
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	c := New()
	c.Put(SearchKey{Name: "jazz"}, []models.Event{{Name: "x"}})
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
