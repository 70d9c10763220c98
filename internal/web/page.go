package web

import (
	"github.com/trogers1052/opportunity-radar/internal/detail"
	"github.com/trogers1052/opportunity-radar/internal/models"
	"github.com/trogers1052/opportunity-radar/internal/radar"
	"github.com/trogers1052/opportunity-radar/internal/table"
)

// Tab is one filter button
type Tab struct {
	Filter table.Filter
	Label  string
	URL    string
	Active bool
}

// HeaderLink is a sortable column header
type HeaderLink struct {
	table.Header
	URL   string
	Arrow string
}

// RowLink is a table row with the link that selects it
type RowLink struct {
	table.Row
	URL      string
	Selected bool
}

// Page is everything the dashboard template needs
type Page struct {
	Title      string
	Subtitle   string
	State      ViewState
	Status     radar.Status
	Loading    bool
	Refreshing bool
	CanRefresh bool

	// NoData is set when the snapshot itself is empty, not just the current tab
	NoData     bool
	CountLabel string
	Tabs       []Tab
	Headers    []HeaderLink
	Rows       []RowLink

	Panel    *detail.Panel
	CloseURL string
	ReturnTo string
}

// BuildPage lays out the dashboard for records under state. A ticker that is not in the
// snapshot renders no detail panel.
func BuildPage(records []models.OpportunityRecord, status radar.Status, state ViewState, builder *detail.Builder) *Page {
	p := &Page{
		Title:      "Marine Layer Advisors",
		Subtitle:   "Opportunity Radar",
		State:      state,
		Status:     status,
		Loading:    status.State == radar.StateLoading || status.State == radar.StateIdle,
		Refreshing: status.State == radar.StateRefreshing,
		CanRefresh: status.CanRefresh,
		NoData:     len(records) == 0,
		ReturnTo:   state.URL(),
		CloseURL:   state.WithTicker("").URL(),
	}

	for _, f := range table.Filters {
		p.Tabs = append(p.Tabs, Tab{
			Filter: f,
			Label:  f.Label(),
			URL:    state.WithFilter(f).URL(),
			Active: f == state.Filter,
		})
	}

	view := table.NewView(records, state.Filter, nil)
	view.Sort = state.Sort

	for _, h := range view.Headers() {
		link := HeaderLink{Header: h, URL: state.WithSort(h.Next).URL()}
		if h.Active {
			link.Arrow = "▼"
			if h.Direction == table.Asc {
				link.Arrow = "▲"
			}
		}
		p.Headers = append(p.Headers, link)
	}

	rows := view.Rows()
	for _, row := range rows {
		p.Rows = append(p.Rows, RowLink{
			Row:      row,
			URL:      state.WithTicker(row.Ticker).URL(),
			Selected: row.Ticker == state.Ticker,
		})
	}
	p.CountLabel = table.CountLabel(len(rows))

	if state.Ticker != "" {
		snap := models.Snapshot{Records: records}
		if rec, ok := snap.Lookup(state.Ticker); ok {
			p.Panel = builder.Build(&rec)
		}
	}

	return p
}
