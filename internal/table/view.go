package table

import (
	"fmt"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// Row is one rendered table row
type Row struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	IVRank      string  `json:"ivRank"`
	Band        Band    `json:"band"`
	BarWidth    float64 `json:"barWidth"`
	Strategy    string  `json:"strategy"`
	StrategyTag string  `json:"strategyTag"`
}

// Header is one column header with its sort indicator
type Header struct {
	Field     SortField
	Label     string
	Active    bool
	Direction SortDirection
	// Next is the sort state a click on this header produces
	Next SortState
}

// View is the table component: records in, rows and click events out.
// Sort is local state; Filter and OnRowClick are supplied by the page.
type View struct {
	Records    []models.OpportunityRecord
	Filter     Filter
	Sort       SortState
	OnRowClick func(models.OpportunityRecord)
}

// NewView creates a table over records with the default sort
func NewView(records []models.OpportunityRecord, filter Filter, onRowClick func(models.OpportunityRecord)) *View {
	return &View{
		Records:    records,
		Filter:     filter,
		Sort:       DefaultSort,
		OnRowClick: onRowClick,
	}
}

// Visible returns the filtered, sorted records, recomputed on every call
func (v *View) Visible() []models.OpportunityRecord {
	return Apply(v.Records, v.Filter, v.Sort)
}

// Rows renders the visible records
func (v *View) Rows() []Row {
	visible := v.Visible()
	rows := make([]Row, len(visible))
	for i := range visible {
		rows[i] = RenderRow(&visible[i])
	}
	return rows
}

// Headers returns the column headers with their current sort indicators
func (v *View) Headers() []Header {
	headers := make([]Header, len(SortFields))
	for i, f := range SortFields {
		headers[i] = Header{
			Field:     f,
			Label:     f.Label(),
			Active:    v.Sort.Field == f,
			Direction: v.Sort.Direction,
			Next:      v.Sort.Toggle(f),
		}
	}
	return headers
}

// ClickHeader applies a header click to the local sort state. The page encodes the
// same transition in each header link as Header.Next.
func (v *View) ClickHeader(field SortField) {
	v.Sort = v.Sort.Toggle(field)
}

// ClickRow reports the record rendered at index i to OnRowClick.
// It returns false when i is out of range.
func (v *View) ClickRow(i int) bool {
	visible := v.Visible()
	if i < 0 || i >= len(visible) {
		return false
	}
	if v.OnRowClick != nil {
		v.OnRowClick(visible[i])
	}
	return true
}

// RenderRow formats a record for display
func RenderRow(rec *models.OpportunityRecord) Row {
	return Row{
		Ticker:      rec.Ticker,
		Name:        rec.Name,
		Price:       "$" + rec.Price.StringFixed(2),
		IVRank:      fmt.Sprintf("%.1f%%", rec.IVRank),
		Band:        IVBand(rec.IVRank),
		BarWidth:    BarWidth(rec.IVRank),
		Strategy:    string(rec.Strategy),
		StrategyTag: StrategyTag(rec.Strategy),
	}
}

// StrategyTag is the short style key for a strategy badge
func StrategyTag(s models.Strategy) string {
	switch s {
	case models.StrategyIncomeGenerator:
		return "income"
	case models.StrategyCheapProtection:
		return "protection"
	}
	return "neutral"
}
