package service

import "math"

const (
	DefaultPageLimit = 30
	MaxPageLimit     = 100
)

type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int
	Limit       int
	HasNextPage bool
	HasPrevPage bool
}

// normalizePage applies the defaults for missing or out-of-range values.
// The page is capped so that (page-1)*limit cannot overflow.
func normalizePage(page, limit int) (int, int) {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// changedString returns next when it differs from current.
func changedString(current string, next *string) *string {
	if next == nil || *next == current {
		return nil
	}
	return next
}

func changedOptional(current *string, next *string) *string {
	if next == nil {
		return nil
	}
	if current != nil && *current == *next {
		return nil
	}
	return next
}
