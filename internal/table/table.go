// Package table filters, sorts and lays out opportunity records for the dashboard table.
package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// Filter is the active category tab
type Filter string

// Filter tags
const (
	FilterAll        Filter = "all"
	FilterIncome     Filter = "income"
	FilterProtection Filter = "protection"
)

// SortField is a sortable column
type SortField string

// Sortable columns
const (
	SortTicker SortField = "ticker"
	SortName   SortField = "name"
	SortPrice  SortField = "price"
	SortIVRank SortField = "ivRank"
)

// SortDirection is ascending or descending
type SortDirection string

// Sort directions
const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// ErrInvalidParam is returned when a filter, field or direction is not recognised
var ErrInvalidParam = errors.New("invalid table parameter")

// Filters lists the tabs in display order
var Filters = []Filter{FilterAll, FilterIncome, FilterProtection}

// SortFields lists the sortable columns in display order
var SortFields = []SortField{SortTicker, SortName, SortPrice, SortIVRank}

// ParseFilter converts a query value into a Filter. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncome, FilterProtection:
		return f, nil
	}
	return FilterAll, fmt.Errorf("%w: filter %q", ErrInvalidParam, s)
}

// ParseSortField converts a query value into a SortField. Empty means the default field.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case "":
		return DefaultSort.Field, nil
	case SortTicker, SortName, SortPrice, SortIVRank:
		return f, nil
	}
	return DefaultSort.Field, fmt.Errorf("%w: sort field %q", ErrInvalidParam, s)
}

// ParseSortDirection converts a query value into a SortDirection. Empty means the default.
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DefaultSort.Direction, nil
	case Asc, Desc:
		return d, nil
	}
	return DefaultSort.Direction, fmt.Errorf("%w: sort direction %q", ErrInvalidParam, s)
}

// Matches reports whether rec belongs under the filter tab
func (f Filter) Matches(rec *models.OpportunityRecord) bool {
	switch f {
	case FilterIncome:
		return rec.Strategy == models.StrategyIncomeGenerator
	case FilterProtection:
		return rec.Strategy == models.StrategyCheapProtection
	}
	return true
}

// Label is the tab caption
func (f Filter) Label() string {
	switch f {
	case FilterIncome:
		return "Income Generator"
	case FilterProtection:
		return "Cheap Protection"
	}
	return "All Opportunities"
}

// Label is the column caption
func (f SortField) Label() string {
	switch f {
	case SortTicker:
		return "Ticker"
	case SortName:
		return "Company"
	case SortPrice:
		return "Price"
	case SortIVRank:
		return "IV Rank"
	}
	return string(f)
}

// SortState is the table's local sort configuration
type SortState struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort is IV rank, highest first
var DefaultSort = SortState{Field: SortIVRank, Direction: Desc}

// Toggle returns the state after a click on field's header: the active field flips
// direction, any other field becomes active in descending order.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Desc}
}

// Apply filters and sorts records without modifying the input. Equal keys keep their
// input order when ascending. Descending is the exact reverse of ascending, so equal
// keys come out in reversed input order there; in exchange two clicks on a header
// always restore the previous order.
func Apply(records []models.OpportunityRecord, filter Filter, sort SortState) []models.OpportunityRecord {
	out := make([]models.OpportunityRecord, 0, len(records))
	for i := range records {
		if filter.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}

	slices.SortStableFunc(out, func(a, b models.OpportunityRecord) int {
		return compare(&a, &b, sort.Field)
	})
	if sort.Direction == Desc {
		slices.Reverse(out)
	}
	return out
}

// Count returns how many records pass the filter
func Count(records []models.OpportunityRecord, filter Filter) int {
	n := 0
	for i := range records {
		if filter.Matches(&records[i]) {
			n++
		}
	}
	return n
}

// CountLabel renders the results count line
func CountLabel(n int) string {
	if n == 1 {
		return "Showing 1 opportunity"
	}
	return fmt.Sprintf("Showing %d opportunities", n)
}

func compare(a, b *models.OpportunityRecord, field SortField) int {
	switch field {
	case SortTicker:
		return strings.Compare(a.Ticker, b.Ticker)
	case SortName:
		return strings.Compare(a.Name, b.Name)
	case SortPrice:
		return a.Price.Cmp(b.Price)
	default:
		return compareFloat(a.IVRank, b.IVRank)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Band is the colour band of the IV rank bar
type Band string

// IV rank bands
const (
	BandCritical Band = "critical"
	BandWarning  Band = "warning"
	BandCaution  Band = "caution"
	BandSafe     Band = "safe"
)

// IVBand maps an IV rank onto its colour band
func IVBand(ivRank float64) Band {
	switch {
	case ivRank > 70:
		return BandCritical
	case ivRank > 50:
		return BandWarning
	case ivRank > 30:
		return BandCaution
	}
	return BandSafe
}

// BarWidth is the IV rank bar width in percent, clamped to [0,100]
func BarWidth(ivRank float64) float64 {
	return math.Max(0, math.Min(100, ivRank))
}
