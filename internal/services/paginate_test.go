package services

import (
	"testing"

	"educate/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int
		items      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{
			name:  "no results",
			page:  1,
			limit: 10,
			total: 0,
			items: 0,
		},
		{
			name:       "single partial page",
			page:       1,
			limit:      10,
			total:      7,
			items:      7,
			totalPages: 1,
		},
		{
			name:       "exact multiple of limit",
			page:       1,
			limit:      5,
			total:      10,
			items:      5,
			totalPages: 2,
			hasNext:    true,
		},
		{
			name:       "remainder adds a final page",
			page:       2,
			limit:      5,
			total:      11,
			items:      5,
			totalPages: 3,
			hasNext:    true,
			hasPrev:    true,
		},
		{
			name:       "last page has no next",
			page:       3,
			limit:      5,
			total:      11,
			items:      1,
			totalPages: 3,
			hasPrev:    true,
		},
		{
			name:       "page beyond the end",
			page:       9,
			limit:      10,
			total:      12,
			items:      0,
			totalPages: 2,
			hasPrev:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := models.PaginationParams{Page: tt.page, Limit: tt.limit}
			result := paginate(make([]int, tt.items), params, tt.total)

			assert.Len(t, result.Data, tt.items)
			assert.Equal(t, tt.page, result.Pagination.CurrentPage)
			assert.Equal(t, tt.totalPages, result.Pagination.TotalPages)
			assert.Equal(t, tt.total, result.Pagination.TotalItems)
			assert.Equal(t, tt.limit, result.Pagination.ItemsPerPage)
			assert.Equal(t, tt.hasNext, result.Pagination.HasNext)
			assert.Equal(t, tt.hasPrev, result.Pagination.HasPrev)
		})
	}
}
