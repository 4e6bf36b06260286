package response

import (
	"net/http"
	"strconv"

	"educate/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
)

// resourceSortKeys is the allow-list of sortBy values listings accept.
// Unknown keys silently fall back to recency.
var resourceSortKeys = map[string]bool{
	"createdAt":   true,
	"score":       true,
	"votes.score": true,
	"views":       true,
	"downloads":   true,
}

// ParsePagination reads page, limit, sortBy and sortOrder from the query
// string, clamping out-of-range values instead of rejecting them.
func ParsePagination(r *http.Request) models.PaginationParams {
	query := r.URL.Query()

	page := parsePositiveInt(query.Get("page"), defaultPage)
	limit := parsePositiveInt(query.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	sortBy := query.Get("sortBy")
	if !resourceSortKeys[sortBy] {
		sortBy = "createdAt"
	}

	sortOrder := query.Get("sortOrder")
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	return models.PaginationParams{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
