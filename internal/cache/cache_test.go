package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	t.Run("Should return a stored value before it expires", func(t *testing.T) {
		c := New[string](4, time.Minute)
		c.Set("crumb", "abc123")

		value, ok := c.Get("crumb")

		assert.True(t, ok)
		assert.Equal(t, "abc123", value)
	})

	t.Run("Should miss an unknown key", func(t *testing.T) {
		value, ok := New[string](4, time.Minute).Get("crumb")

		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("Should miss after expiration", func(t *testing.T) {
		c := New[string](4, 20*time.Millisecond)
		c.Set("crumb", "abc123")

		assert.Eventually(t, func() bool {
			_, ok := c.Get("crumb")
			return !ok
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Should delete a key", func(t *testing.T) {
		c := New[string](4, time.Minute)
		c.Set("crumb", "abc123")

		c.Delete("crumb")

		_, ok := c.Get("crumb")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Should evict the oldest entry beyond its size", func(t *testing.T) {
		c := New[string](1, time.Minute)
		c.Set("old", "a")
		c.Set("new", "b")

		_, ok := c.Get("old")
		assert.False(t, ok)
		value, ok := c.Get("new")
		assert.True(t, ok)
		assert.Equal(t, "b", value)
		assert.Equal(t, 1, c.Len())
	})
}
