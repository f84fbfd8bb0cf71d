package http

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 1000
)

// Pagination is the normalized form of the page/limit query parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// normalizePagination clamps raw query values into safe bounds. Malformed or
// missing input falls back to the defaults instead of failing the request;
// there is no upper bound on page, out-of-range pages yield empty results.
func normalizePagination(rawPage, rawLimit string) Pagination {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		page = defaultPage
	}
	if page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
