package cache

// Recorder receives hit and miss observations keyed by the primary tag.
type Recorder interface {
	RecordCache(tag string, hit bool)
}

// Fetch returns the cached value for key, or calls load and caches its result
// under tags. Errors are never cached. A nil cache always calls load. A result
// whose tags were invalidated while load ran is returned but not cached.
func Fetch[T any](c *TagCache, rec Recorder, key string, tags []string, load func() (T, error)) (T, error) {
	label := ""
	if len(tags) > 0 {
		label = tags[0]
	}

	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				if rec != nil {
					rec.RecordCache(label, true)
				}
				return typed, nil
			}
		}
	}
	if rec != nil {
		rec.RecordCache(label, false)
	}

	var gen Generation
	if c != nil {
		gen = c.Generation(tags...)
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if c != nil {
		c.SetAt(gen, key, v)
	}
	return v, nil
}
