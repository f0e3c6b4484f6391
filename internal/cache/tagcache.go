package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// TagCache is an in-process LRU with TTL where every entry is indexed by one
// or more revalidation tags. Invalidating a tag drops every entry carrying it.
//
// The tag index may reference keys the LRU already evicted; removing an
// absent key is a no-op, so the index is only pruned on Invalidate.
//
// Every tag carries a generation that Invalidate bumps. A value loaded under
// a Generation snapshot is only stored by SetAt if none of its tags moved.
type TagCache struct {
	mu    sync.Mutex
	lru   *lru.LRU[string, any]
	index map[string]map[string]struct{} // tag -> keys
	gens  map[string]uint64
}

// Generation is a snapshot of the invalidation counters of a set of tags.
type Generation struct {
	tags []string
	gens []uint64
}

func NewTagCache(size int, ttl time.Duration) *TagCache {
	if size < 1 {
		size = 1
	}
	return &TagCache{
		lru:   lru.NewLRU[string, any](size, nil, ttl),
		index: make(map[string]map[string]struct{}),
		gens:  make(map[string]uint64),
	}
}

func (c *TagCache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

func (c *TagCache) Set(key string, value any, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, tags)
}

// Generation snapshots the current generation of tags.
func (c *TagCache) Generation(tags ...string) Generation {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := Generation{tags: append([]string(nil), tags...), gens: make([]uint64, len(tags))}
	for i, tag := range tags {
		g.gens[i] = c.gens[tag]
	}
	return g
}

// SetAt stores value under the tags of g unless one of them was invalidated
// after g was taken. It reports whether the value was stored.
func (c *TagCache) SetAt(g Generation, key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, tag := range g.tags {
		if c.gens[tag] != g.gens[i] {
			return false
		}
	}
	c.set(key, value, g.tags)
	return true
}

func (c *TagCache) set(key string, value any, tags []string) {
	for _, tag := range tags {
		keys, ok := c.index[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.index[tag] = keys
		}
		keys[key] = struct{}{}
	}
	c.lru.Add(key, value)
}

// Invalidate removes every entry tagged with any of tags.
func (c *TagCache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		for key := range c.index[tag] {
			c.lru.Remove(key)
		}
		delete(c.index, tag)
		c.gens[tag]++
	}
}

func (c *TagCache) Len() int {
	return c.lru.Len()
}
