package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, DefaultPage, DefaultLimit},
		{-3, 5, DefaultPage, 5},
		{2, 500, 2, MaxLimit},
		{4, 25, 4, 25},
		{math.MaxInt, 10, math.MaxInt32/10 + 1, 10},
	}
	for _, tt := range tests {
		page, limit := NormalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(15, 10))
	assert.Equal(t, 0, TotalPages(15, 0))
}

func TestNormalizePage_OffsetFitsInt32(t *testing.T) {
	for _, limit := range []int{1, 7, DefaultLimit, MaxLimit} {
		page, limit := NormalizePage(math.MaxInt, limit)
		offset := int64(page-1) * int64(limit)
		assert.GreaterOrEqual(t, offset, int64(0))
		assert.LessOrEqual(t, offset, int64(math.MaxInt32))
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%siti%", ContainsPattern("SITI"))
	assert.Equal(t, `%a\_b\%c\\d%`, ContainsPattern(`a_b%c\d`))
}
