package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name     string
		rawPage  string
		rawLimit string
		want     Pagination
	}{
		{
			name: "missing input falls back to defaults",
			want: Pagination{Page: 1, Limit: 10, Offset: 0},
		},
		{
			name:     "non-numeric input falls back to defaults",
			rawPage:  "abc",
			rawLimit: "xyz",
			want:     Pagination{Page: 1, Limit: 10, Offset: 0},
		},
		{
			name:     "valid input passes through",
			rawPage:  "3",
			rawLimit: "25",
			want:     Pagination{Page: 3, Limit: 25, Offset: 50},
		},
		{
			name:     "page zero floors to one",
			rawPage:  "0",
			rawLimit: "5",
			want:     Pagination{Page: 1, Limit: 5, Offset: 0},
		},
		{
			name:     "negative page floors to one",
			rawPage:  "-7",
			rawLimit: "5",
			want:     Pagination{Page: 1, Limit: 5, Offset: 0},
		},
		{
			name:     "limit above max clamps to max",
			rawPage:  "1",
			rawLimit: "5000",
			want:     Pagination{Page: 1, Limit: 1000, Offset: 0},
		},
		{
			name:     "limit zero clamps to one",
			rawPage:  "2",
			rawLimit: "0",
			want:     Pagination{Page: 2, Limit: 1, Offset: 1},
		},
		{
			name:     "negative limit clamps to one",
			rawPage:  "1",
			rawLimit: "-10",
			want:     Pagination{Page: 1, Limit: 1, Offset: 0},
		},
		{
			name:     "fractional input falls back to default",
			rawPage:  "1.5",
			rawLimit: "2.5",
			want:     Pagination{Page: 1, Limit: 10, Offset: 0},
		},
		{
			name:     "large page computes offset without upper bound",
			rawPage:  "100000",
			rawLimit: "10",
			want:     Pagination{Page: 100000, Limit: 10, Offset: 999990},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePagination(tt.rawPage, tt.rawLimit)
			assert.Equal(t, tt.want, got)
		})
	}
}
