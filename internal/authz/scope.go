package authz

import "github.com/google/uuid"

// RegionScope restricts data access to a set of operational regions.
// A session with no region assignments is unrestricted.
type RegionScope struct {
	ids map[uuid.UUID]struct{}
}

// Scope derives the region scope of a session. Malformed ids are skipped.
// A nil session yields a scope that allows nothing.
func Scope(s *Session) RegionScope {
	if s == nil {
		return RegionScope{ids: map[uuid.UUID]struct{}{}}
	}
	if len(s.RegionIDs) == 0 {
		return RegionScope{}
	}
	ids := make(map[uuid.UUID]struct{}, len(s.RegionIDs))
	for _, raw := range s.RegionIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids[id] = struct{}{}
		}
	}
	return RegionScope{ids: ids}
}

func (r RegionScope) Unrestricted() bool {
	return r.ids == nil
}

func (r RegionScope) Allows(regionID uuid.UUID) bool {
	if r.Unrestricted() {
		return true
	}
	_, ok := r.ids[regionID]
	return ok
}

// IDs returns the allowed region ids, or nil when unrestricted.
func (r RegionScope) IDs() []uuid.UUID {
	if r.Unrestricted() {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	return ids
}
