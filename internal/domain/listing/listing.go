// Package listing implements the search filter and page arithmetic behind
// GET /requests.
package listing

import (
	"strings"

	"github.com/okian/tourdesk/internal/domain/model"
)

// Query selects one page of the filtered collection. Page is 1-based.
type Query struct {
	Page     int
	PageSize int
	Search   string
}

// Matches reports whether name contains search, ignoring case.
// An empty search matches every name.
func Matches(name, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

// Bounds returns the [start, end) offsets of page within total items.
// Both offsets are clamped to [0, total], so non-positive pages or sizes and
// pages past the end produce an empty range instead of an error.
func Bounds(total, page, pageSize int) (start, end int) {
	if total <= 0 || page < 1 || pageSize < 1 {
		return 0, 0
	}
	// (page-1)*pageSize can overflow for huge pages; compare page counts first.
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	if page-1 >= pages {
		return total, total
	}
	start = (page - 1) * pageSize
	end = min(start+pageSize, total)
	return start, end
}

// Apply filters records by q.Search and returns the requested page together
// with the number of records that matched. The returned slice never aliases
// records.
func Apply(records []model.Request, q Query) ([]model.Request, int) {
	filtered := make([]model.Request, 0, len(records))
	for _, r := range records {
		if Matches(r.Name, q.Search) {
			filtered = append(filtered, r)
		}
	}

	start, end := Bounds(len(filtered), q.Page, q.PageSize)
	page := make([]model.Request, end-start)
	copy(page, filtered[start:end])
	return page, len(filtered)
}
