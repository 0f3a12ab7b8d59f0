// Package paging validates pagination input and computes the page window.
// It is a small state machine: a request either redirects to its canonical
// URL, terminates as not-found, or renders a slice of the sorted candidates.
package paging

import (
	"net/url"
	"strconv"
)

// PageSizes is the allow-list of page sizes; anything else falls back to the
// default.
var PageSizes = []int{12, 25, 50}

// DefaultPageSize is used when the parameter is absent or unrecognized.
const DefaultPageSize = 12

// State is the terminal decision for the request.
type State int

const (
	// StatePage renders the computed slice.
	StatePage State = iota

	// StateRedirect sends the client to the canonical URL before rendering.
	// Page 1 has no page parameter in its canonical form.
	StateRedirect

	// StateNotFound terminates the request: the page is beyond the last
	// valid one. Never silently clamped, that would serve wrong data under
	// a misleading URL.
	StateNotFound
)

// Params are the pagination inputs for one request.
type Params struct {
	BasePath string     // canonical path for the current page, e.g. /fl/tampa
	Query    url.Values // full inbound query string
	Total    int        // candidate count after filtering
}

// Result is the state machine's outcome.
type Result struct {
	State       State
	RedirectURL string

	Page     int
	PageSize int
	Total    int
	Start    int // slice bounds into the sorted candidate set
	End      int
	HasMore  bool
}

// NormalizePageSize maps the raw parameter onto the allow-list.
func NormalizePageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPageSize
	}

	for _, allowed := range PageSizes {
		if n == allowed {
			return n
		}
	}

	return DefaultPageSize
}

// Paginate runs the state machine.
func Paginate(p Params) Result {
	pageSize := NormalizePageSize(p.Query.Get("page_size"))

	res := Result{
		State:    StatePage,
		Page:     1,
		PageSize: pageSize,
		Total:    p.Total,
	}

	if raw := p.Query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 1 {
			// page < 1, non-numeric, and an explicit page=1 all share one
			// canonical form: the page-less URL.
			res.State = StateRedirect
			res.RedirectURL = canonicalURL(p.BasePath, p.Query)

			return res
		}

		lastPage := (p.Total + pageSize - 1) / pageSize
		if p.Total > 0 && page > lastPage {
			res.State = StateNotFound

			return res
		}

		res.Page = page
	}

	res.Start = (res.Page - 1) * pageSize
	if res.Start > p.Total {
		res.Start = p.Total
	}

	res.End = res.Page * pageSize
	if res.End > p.Total {
		res.End = p.Total
	}

	res.HasMore = res.Page*pageSize < p.Total

	return res
}

// canonicalURL rebuilds the URL without the page parameter, preserving every
// other query parameter the request carried.
func canonicalURL(basePath string, query url.Values) string {
	rest := url.Values{}
	for k, vs := range query {
		if k == "page" {
			continue
		}
		rest[k] = vs
	}

	if len(rest) == 0 {
		return basePath
	}

	return basePath + "?" + rest.Encode()
}
