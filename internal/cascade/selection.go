// Package cascade models the four-level administrative selector
// (province, regency, district, village). Selecting a value at one level
// always unsets every deeper level.
package cascade

import "fmt"

type Level int

const (
	Province Level = iota
	Regency
	District
	Village
)

// Levels in selection order.
var Levels = []Level{Province, Regency, District, Village}

func (l Level) Valid() bool {
	return l >= Province && l <= Village
}

func (l Level) String() string {
	switch l {
	case Province:
		return "province"
	case Regency:
		return "regency"
	case District:
		return "district"
	case Village:
		return "village"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Selection holds the selected id per level; zero means unselected.
type Selection struct {
	ids [4]uint
}

// Select stores id at level and unsets every deeper level.
func (s *Selection) Select(level Level, id uint) {
	if !level.Valid() {
		return
	}
	s.ids[level] = id
	for l := level + 1; l <= Village; l++ {
		s.ids[l] = 0
	}
}

// Clear unsets level and every deeper level.
func (s *Selection) Clear(level Level) {
	s.Select(level, 0)
}

func (s Selection) Get(level Level) (uint, bool) {
	if !level.Valid() || s.ids[level] == 0 {
		return 0, false
	}
	return s.ids[level], true
}

// Complete reports whether all four levels are selected.
func (s Selection) Complete() bool {
	for _, id := range s.ids {
		if id == 0 {
			return false
		}
	}
	return true
}
