// Package web renders the server-side dashboard page.
package web

import (
	"net/url"

	"github.com/trogers1052/opportunity-radar/internal/table"
)

// ViewState is the page-local view state carried in the URL query
type ViewState struct {
	Filter table.Filter
	Sort   table.SortState
	Ticker string
}

// DefaultViewState is the state of a bare "/" request
var DefaultViewState = ViewState{Filter: table.FilterAll, Sort: table.DefaultSort}

// ParseViewState reads filter, sort, dir and ticker. Unknown values fall back to defaults.
func ParseViewState(q url.Values) ViewState {
	filter, _ := table.ParseFilter(q.Get("filter"))
	field, _ := table.ParseSortField(q.Get("sort"))
	dir, _ := table.ParseSortDirection(q.Get("dir"))

	return ViewState{
		Filter: filter,
		Sort:   table.SortState{Field: field, Direction: dir},
		Ticker: q.Get("ticker"),
	}
}

// Query encodes the state; the ticker is omitted when nothing is selected
func (s ViewState) Query() url.Values {
	q := url.Values{}
	q.Set("filter", string(s.Filter))
	q.Set("sort", string(s.Sort.Field))
	q.Set("dir", string(s.Sort.Direction))
	if s.Ticker != "" {
		q.Set("ticker", s.Ticker)
	}
	return q
}

// URL is the dashboard link for the state
func (s ViewState) URL() string {
	return "/?" + s.Query().Encode()
}

// WithFilter switches tabs, keeping sort and selection
func (s ViewState) WithFilter(f table.Filter) ViewState {
	s.Filter = f
	return s
}

// WithSort applies a header click
func (s ViewState) WithSort(sort table.SortState) ViewState {
	s.Sort = sort
	return s
}

// WithTicker selects ticker; an empty ticker closes the detail
func (s ViewState) WithTicker(ticker string) ViewState {
	s.Ticker = ticker
	return s
}
