package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetAndGet(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Set("k", payload{Name: "lyon", Count: 3}, time.Minute, "test"))

	var got payload
	found, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "lyon", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetMissingKey(t *testing.T) {
	c := New(nil)

	var got payload
	found, err := c.Get("nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStaleness(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Set("fresh", payload{}, time.Minute, "test"))
	require.NoError(t, c.Set("stale", payload{}, -time.Second, "test"))

	assert.False(t, c.IsStale("fresh"))
	assert.True(t, c.IsStale("stale"))
	assert.True(t, c.IsStale("missing"))

	// Stale entries are invisible to Get
	var got payload
	found, err := c.Get("stale", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// ...but still readable with metadata for stale serving
	entry, exists, err := c.GetWithMetadata("stale", &got)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "test", entry.Source)
}

func TestVeryStale(t *testing.T) {
	c := New(nil)

	// Created now with a negative TTL: already past 2x TTL
	require.NoError(t, c.Set("old", payload{}, -time.Minute, "test"))
	require.NoError(t, c.Set("fresh", payload{}, time.Minute, "test"))

	assert.True(t, c.IsVeryStale("old"))
	assert.False(t, c.IsVeryStale("fresh"))
	assert.True(t, c.IsVeryStale("missing"))
}

func TestDeleteAndClear(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Set("a", payload{}, time.Minute, "test"))
	require.NoError(t, c.Set("b", payload{}, time.Minute, "test"))
	assert.Len(t, c.Keys(), 2)

	c.Delete("a")
	assert.Len(t, c.Keys(), 1)

	c.Clear()
	assert.Empty(t, c.Keys())
}

func TestStats(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Set("fresh", payload{}, time.Minute, "test"))
	require.NoError(t, c.Set("stale", payload{}, -time.Second, "test"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.FreshEntries)
	assert.Equal(t, 1, stats.StaleEntries)
	assert.False(t, stats.OldestEntry.IsZero())
}

func TestCleanupStaleKeepsServableEntries(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Set("very-stale", payload{}, -time.Minute, "test"))
	require.NoError(t, c.Set("fresh", payload{}, time.Minute, "test"))

	removed := c.CleanupStale()
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"fresh"}, c.Keys())
}
