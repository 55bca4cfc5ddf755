package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_GetSet(t *testing.T) {
	c := newTTLCache()

	_, ok := c.Get("k", time.Minute)
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLCache_ExpiryIsPerRead(t *testing.T) {
	c := newTTLCache()
	c.setAt("k", "v", time.Now().Add(-10*time.Minute))

	// The same entry is live or stale depending on the TTL the reader
	// brings.
	_, ok := c.Get("k", 5*time.Minute)
	assert.False(t, ok)

	got, ok := c.Get("k", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLCache_StaleReadDoesNotDelete(t *testing.T) {
	c := newTTLCache()
	c.setAt("k", "v", time.Now().Add(-10*time.Minute))

	_, ok := c.Get("k", time.Minute)
	require.False(t, ok)

	// The stale entry is still there for a reader with a longer TTL.
	_, ok = c.Get("k", time.Hour)
	assert.True(t, ok)
}

func TestTTLCache_SetOverwritesTimestamp(t *testing.T) {
	c := newTTLCache()
	c.setAt("k", "old", time.Now().Add(-10*time.Minute))
	c.Set("k", "new")

	got, ok := c.Get("k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestTTLCache_Clear(t *testing.T) {
	c := newTTLCache()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	_, ok := c.Get("a", time.Hour)
	assert.False(t, ok)
	_, ok = c.Get("b", time.Hour)
	assert.False(t, ok)
}
