package shared

import (
	"net/http"
	"strconv"
)

// List endpoints share one page-size policy.
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page is the limit/offset window a list endpoint reads from the query
// string.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads the limit and offset query parameters. Missing or
// malformed values fall back to the defaults; limit is clamped to the
// API-wide maximum.
func ParsePage(r *http.Request) Page {
	page := Page{Limit: defaultPageSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Limit = min(v, maxPageSize)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Offset = v
		}
	}
	return page
}
