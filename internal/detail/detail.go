// Package detail builds the spotlight panel shown for a selected opportunity.
//
// Everything here is display-only: derived values are recomputed for each render and
// never written back to the record.
package detail

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/trogers1052/opportunity-radar/internal/models"
	"github.com/trogers1052/opportunity-radar/internal/table"
)

// DefaultContactAddress receives term sheet requests
const DefaultContactAddress = "advisors@marinelayer.com"

// Narrative sentences appended after the rationale, in this order
const (
	SentenceElevatedVol     = "Volatility is elevated. We recommend overwriting to capture yield while maintaining upside participation."
	SentenceCompressedVol   = "Volatility is compressed. Downside hedges are historically cheap. Consider protective puts or collars to limit downside risk."
	SentenceExpensiveHedges = "Put skew is elevated, indicating expensive downside protection. This favors selling premium strategies."
	SentenceCheapHedges     = "Call skew is elevated relative to puts, suggesting cheap downside protection opportunities."
)

// RandSource supplies uniform values in [0,1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Panel is the rendered detail view of one record
type Panel struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Strategy    string `json:"strategy"`
	StrategyTag string `json:"strategyTag"`

	Crowding   int    `json:"crowdingPercentile"`
	SkewStatus string `json:"skewStatus"`
	SkewTone   string `json:"skewTone"`
	IVStatus   string `json:"ivStatus"`
	IVTone     string `json:"ivTone"`

	Price        string `json:"price"`
	IVRank       string `json:"ivRank"`
	Skew         string `json:"skew"`
	PutCallRatio string `json:"putCallRatio"`

	ShowRecommendations  bool              `json:"showRecommendations"`
	RecommendationsTitle string            `json:"recommendationsTitle,omitempty"`
	CoveredCalls         []CoveredCallCard `json:"coveredCalls,omitempty"`
	Collars              []CollarCard      `json:"collars,omitempty"`

	Rationale   string   `json:"rationale"`
	Sentences   []string `json:"sentences"`
	ContactLink string   `json:"contactLink"`
}

// Narrative joins the rationale and the appended sentences
func (p *Panel) Narrative() string {
	out := p.Rationale
	for _, s := range p.Sentences {
		out += " " + s
	}
	return out
}

// Builder renders panels. The zero value uses the default contact address and the
// global random source.
type Builder struct {
	ContactAddress string
	Rand           RandSource
}

// Build renders rec, or returns nil when nothing is selected
func (b *Builder) Build(rec *models.OpportunityRecord) *Panel {
	if rec == nil {
		return nil
	}

	rng := b.Rand
	if rng == nil {
		rng = globalRand{}
	}
	address := b.ContactAddress
	if address == "" {
		address = DefaultContactAddress
	}

	skewStatus, skewTone := SkewStatus(rec.Skew)
	ivStatus, ivTone := IVStatus(rec.IVRank)

	p := &Panel{
		Ticker:       rec.Ticker,
		Name:         rec.Name,
		Strategy:     string(rec.Strategy),
		StrategyTag:  table.StrategyTag(rec.Strategy),
		Crowding:     CrowdingPercentile(rec.IVRank, rng),
		SkewStatus:   skewStatus,
		SkewTone:     skewTone,
		IVStatus:     ivStatus,
		IVTone:       ivTone,
		Price:        "$" + rec.Price.StringFixed(2),
		IVRank:       fmt.Sprintf("%.1f%%", rec.IVRank),
		Skew:         signed(rec.Skew, 2) + "%",
		PutCallRatio: fmt.Sprintf("%.2f", rec.PutCallRatio),
		Rationale:    rec.Rationale,
		Sentences:    Sentences(rec.IVRank, rec.Skew),
		ContactLink:  ContactLink(address, rec),
	}

	switch {
	case rec.IsIncome():
		p.ShowRecommendations = true
		p.RecommendationsTitle = "Covered Call Recommendations"
		for i := range rec.CoveredCalls {
			p.CoveredCalls = append(p.CoveredCalls, coveredCallCard(&rec.CoveredCalls[i]))
		}
	case rec.IsProtection():
		p.ShowRecommendations = true
		p.RecommendationsTitle = "Collar Recommendations"
		for i := range rec.Collars {
			p.Collars = append(p.Collars, collarCard(&rec.Collars[i]))
		}
	}

	return p
}

// CrowdingPercentile jitters ivRank by up to ±10, rounds half up and clamps to [1,99]
func CrowdingPercentile(ivRank float64, rng RandSource) int {
	jitter := rng.Float64()*20 - 10
	v := math.Floor(ivRank + jitter + 0.5)
	return int(math.Min(99, math.Max(1, v)))
}

// SkewStatus labels put skew and returns the tone used to colour it
func SkewStatus(skew float64) (label, tone string) {
	if skew > 0 {
		return "Expensive", "warning"
	}
	return "Cheap", "success"
}

// IVStatus labels the IV rank and returns the tone used to colour it
func IVStatus(ivRank float64) (label, tone string) {
	switch {
	case ivRank > 50:
		return "Elevated", "danger"
	case ivRank < 30:
		return "Low", "success"
	}
	return "Moderate", "muted"
}

// Sentences returns every narrative sentence whose condition holds, in fixed order
func Sentences(ivRank, skew float64) []string {
	out := []string{}
	if ivRank > 50 {
		out = append(out, SentenceElevatedVol)
	}
	if ivRank < 30 {
		out = append(out, SentenceCompressedVol)
	}
	if skew > 0 {
		out = append(out, SentenceExpensiveHedges)
	}
	if skew < -2 {
		out = append(out, SentenceCheapHedges)
	}
	return out
}

func signed(v float64, prec int) string {
	s := fmt.Sprintf("%.*f", prec, v)
	if v > 0 {
		return "+" + s
	}
	return s
}
