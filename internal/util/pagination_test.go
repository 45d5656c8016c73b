package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		page, size     int
		wantFrom, want int
	}{
		{name: "first page", page: 1, size: 4, wantFrom: 0, want: 4},
		{name: "third page", page: 3, size: 10, wantFrom: 20, want: 10},
		{name: "zero page", page: 0, size: 5, wantFrom: 0, want: 5},
		{name: "default size", page: 2, size: 0, wantFrom: DefaultPageSize, want: DefaultPageSize},
		{name: "size too big", page: 1, size: 1000, wantFrom: 0, want: DefaultPageSize},
		{name: "huge page", page: math.MaxInt, size: 100, wantFrom: (MaxPage - 1) * 100, want: 100},
		{name: "huge page default size", page: math.MaxInt - 1, size: 0, wantFrom: (MaxPage - 1) * DefaultPageSize, want: DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.want, limit)
		})
	}
}

func TestCalculate_OffsetNeverNegative(t *testing.T) {
	t.Parallel()

	for _, page := range []int{MaxPage, MaxPage + 1, math.MaxInt / 2, math.MaxInt} {
		for _, size := range []int{1, DefaultPageSize, maxPageSize} {
			from, limit := Calculate(page, size)
			assert.GreaterOrEqual(t, from, 0, "page=%d size=%d", page, size)
			assert.Equal(t, MaxPage, from/limit+1, "page=%d size=%d", page, size)
		}
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, Pages(0, 4))
	assert.EqualValues(t, 1, Pages(4, 4))
	assert.EqualValues(t, 2, Pages(5, 4))
	assert.EqualValues(t, 0, Pages(5, 0))
}
