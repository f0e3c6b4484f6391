package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_SelectClearsDeeperLevels(t *testing.T) {
	var s Selection
	s.Select(Province, 35)
	s.Select(Regency, 3522)
	s.Select(District, 352201)
	s.Select(Village, 3522012001)
	assert.True(t, s.Complete())

	s.Select(Province, 32)

	id, ok := s.Get(Province)
	assert.True(t, ok)
	assert.Equal(t, uint(32), id)
	for _, l := range []Level{Regency, District, Village} {
		_, ok := s.Get(l)
		assert.False(t, ok, "level %s should be cleared", l)
	}
	assert.False(t, s.Complete())
}

func TestSelection_ClearMiddleLevel(t *testing.T) {
	var s Selection
	s.Select(Province, 1)
	s.Select(Regency, 2)
	s.Select(District, 3)

	s.Clear(Regency)

	_, ok := s.Get(Province)
	assert.True(t, ok)
	_, ok = s.Get(Regency)
	assert.False(t, ok)
	_, ok = s.Get(District)
	assert.False(t, ok)
}

func TestSelection_InvalidLevelIsIgnored(t *testing.T) {
	var s Selection
	s.Select(Level(7), 1)
	_, ok := s.Get(Level(7))
	assert.False(t, ok)
	assert.Equal(t, "level(7)", Level(7).String())
}
