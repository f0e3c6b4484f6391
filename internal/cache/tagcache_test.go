package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCache_InvalidateByTag(t *testing.T) {
	c := NewTagCache(16, time.Minute)

	c.Set("roles:list", []string{"admin"}, "roles")
	c.Set("users:page:1", 1, "/dashboard/users")
	c.Set("users:roles", 2, "/dashboard/users", "roles")

	c.Invalidate("roles")

	_, ok := c.Get("roles:list")
	assert.False(t, ok)
	_, ok = c.Get("users:roles")
	assert.False(t, ok)
	v, ok := c.Get("users:page:1")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTagCache_InvalidateUnknownTag(t *testing.T) {
	c := NewTagCache(4, time.Minute)
	c.Set("k", "v", "a")

	assert.NotPanics(t, func() { c.Invalidate("missing") })
	assert.Equal(t, 1, c.Len())
}

func TestTagCache_EvictedKeyStaysInvalidatable(t *testing.T) {
	c := NewTagCache(1, time.Minute)
	c.Set("a", 1, "t")
	c.Set("b", 2, "t") // evicts a

	c.Invalidate("t")
	assert.Equal(t, 0, c.Len())
}

type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) RecordCache(_ string, hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func TestFetch(t *testing.T) {
	c := NewTagCache(8, time.Minute)
	rec := &countingRecorder{}
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"x"}, nil
	}

	v, err := Fetch(c, rec, "key", []string{"roles"}, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v)

	v, err = Fetch(c, rec, "key", []string{"roles"}, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)

	c.Invalidate("roles")
	_, err = Fetch(c, rec, "key", []string{"roles"}, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := NewTagCache(8, time.Minute)
	boom := errors.New("boom")
	calls := 0

	for i := 0; i < 2; i++ {
		_, err := Fetch(c, nil, "key", []string{"t"}, func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
}

func TestFetch_NilCache(t *testing.T) {
	v, err := Fetch[int](nil, nil, "key", nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_InvalidationDuringLoadIsNotCached(t *testing.T) {
	c := NewTagCache(8, time.Minute)

	v, err := Fetch(c, nil, "roles:list", []string{"roles"}, func() (string, error) {
		// a mutation commits and revalidates while the old list is being read
		c.Invalidate("roles")
		return "old-role-list", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old-role-list", v, "the caller still gets what it loaded")

	_, ok := c.Get("roles:list")
	assert.False(t, ok)

	v, err = Fetch(c, nil, "roles:list", []string{"roles"}, func() (string, error) {
		return "new-role-list", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new-role-list", v)
	cached, ok := c.Get("roles:list")
	require.True(t, ok)
	assert.Equal(t, "new-role-list", cached)
}

func TestTagCache_SetAtChecksEveryTag(t *testing.T) {
	c := NewTagCache(8, time.Minute)

	g := c.Generation("address", "roles")
	c.Invalidate("users")
	assert.True(t, c.SetAt(g, "a", 1), "unrelated tags do not block the store")

	g = c.Generation("address", "roles")
	c.Invalidate("roles")
	assert.False(t, c.SetAt(g, "b", 2))
	_, ok := c.Get("b")
	assert.False(t, ok)

	c.Invalidate("address")
	_, ok = c.Get("a")
	assert.False(t, ok, "SetAt indexes the value under its tags")
}
