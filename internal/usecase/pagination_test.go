package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name             string
		page, limit      int
		total            int64
		wantPages        int
		wantNext, wantPr bool
	}{
		{"empty", 1, 20, 0, 1, false, false},
		{"single page", 1, 20, 5, 1, false, false},
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle", 2, 10, 25, 3, true, true},
		{"last", 3, 10, 25, 3, false, true},
		{"exact multiple", 2, 10, 20, 2, false, true},
		{"beyond last", 9, 10, 25, 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)

			assert.Equal(t, tt.page, p.CurrentPage)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.total, p.TotalItems)
			assert.Equal(t, tt.limit, p.ItemsPerPage)
			assert.Equal(t, tt.wantNext, p.HasNextPage)
			assert.Equal(t, tt.wantPr, p.HasPrevPage)
		})
	}
}

func TestSkip(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, limit := range []int{1, 20, 100} {
			skip, ok := Skip(page, limit)
			assert.True(t, ok)
			assert.Equal(t, (page-1)*limit, skip)
		}
	}

	skip, ok := Skip(0, 20)
	assert.True(t, ok)
	assert.Equal(t, 0, skip)
}

func TestSkip_Overflow(t *testing.T) {
	_, ok := Skip(math.MaxInt, 20)
	assert.False(t, ok)

	_, ok = Skip(math.MaxInt/100+2, 100)
	assert.False(t, ok)

	skip, ok := Skip(math.MaxInt, 1)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt-1, skip)
}

func TestEmptyPagination(t *testing.T) {
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 1}, EmptyPagination())
}
