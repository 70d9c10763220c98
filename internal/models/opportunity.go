package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Strategy is the classification computed upstream for a ticker
type Strategy string

// Strategy constants, as they appear in the snapshot JSON
const (
	StrategyIncomeGenerator Strategy = "Income Generator"
	StrategyCheapProtection Strategy = "Cheap Protection"
	StrategyNeutral         Strategy = "Neutral"
)

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	switch s {
	case StrategyIncomeGenerator, StrategyCheapProtection, StrategyNeutral:
		return true
	}
	return false
}

// OpportunityRecord represents one ticker's precomputed options analytics
type OpportunityRecord struct {
	Ticker           string          `json:"ticker"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	IV               float64         `json:"iv,omitempty"`
	IVRank           float64         `json:"ivRank"`
	Skew             float64         `json:"skew"`
	PutCallRatio     float64         `json:"putCallRatio"`
	Strategy         Strategy        `json:"strategy"`
	Rationale        string          `json:"rationale"`
	Expiration       string          `json:"expiration"`
	DaysToExpiration int             `json:"daysToExpiration"`

	// Exactly one of these is populated, depending on Strategy.
	// Both travel as "optionRecommendations" on the wire.
	CoveredCalls []CoveredCallRecommendation `json:"-"`
	Collars      []CollarRecommendation      `json:"-"`
}

// CoveredCallRecommendation is a call to sell against held shares (Income Generator)
type CoveredCallRecommendation struct {
	Strike           decimal.Decimal `json:"strike"`
	OTMPercent       float64         `json:"otmPercent"`
	Premium          decimal.Decimal `json:"premium"`
	OptionYield      float64         `json:"optionYield"`
	AnnualizedYield  float64         `json:"annualizedYield"`
	UpsidePercent    float64         `json:"upsidePercent"`
	DaysToExpiration int             `json:"daysToExpiration"`
	IV               *float64        `json:"iv"`
	Volume           int64           `json:"volume"`
	OpenInterest     int64           `json:"openInterest"`
	Recommended      bool            `json:"recommended"`
}

// CollarRecommendation is a protective put paired with a covered call (Cheap Protection)
type CollarRecommendation struct {
	PutStrike          decimal.Decimal `json:"putStrike"`
	CallStrike         decimal.Decimal `json:"callStrike"`
	PutOTMPercent      float64         `json:"putOtmPercent"`
	CallOTMPercent     float64         `json:"callOtmPercent"`
	PutPremium         decimal.Decimal `json:"putPremium"`
	CallPremium        decimal.Decimal `json:"callPremium"`
	NetCost            decimal.Decimal `json:"netCost"`
	NetCostPercent     float64         `json:"netCostPercent"`
	DownsideProtection float64         `json:"downsideProtection"`
	UpsideCap          float64         `json:"upsideCap"`
	DaysToExpiration   int             `json:"daysToExpiration"`
	PutIV              *float64        `json:"putIv"`
	CallIV             *float64        `json:"callIv"`
	Recommended        bool            `json:"recommended"`
}

// IsIncome reports whether the record is classified as Income Generator
func (r *OpportunityRecord) IsIncome() bool {
	return r.Strategy == StrategyIncomeGenerator
}

// IsProtection reports whether the record is classified as Cheap Protection
func (r *OpportunityRecord) IsProtection() bool {
	return r.Strategy == StrategyCheapProtection
}

// RecommendationCount returns the number of entries in whichever list the strategy carries
func (r *OpportunityRecord) RecommendationCount() int {
	switch r.Strategy {
	case StrategyIncomeGenerator:
		return len(r.CoveredCalls)
	case StrategyCheapProtection:
		return len(r.Collars)
	}
	return 0
}

// UnmarshalJSON decodes optionRecommendations into the list matching the strategy.
// Neutral records and unknown strategies drop the list.
func (r *OpportunityRecord) UnmarshalJSON(data []byte) error {
	type alias OpportunityRecord
	aux := struct {
		*alias
		OptionRecommendations json.RawMessage `json:"optionRecommendations"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.CoveredCalls = nil
	r.Collars = nil
	raw := aux.OptionRecommendations
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch r.Strategy {
	case StrategyIncomeGenerator:
		if err := json.Unmarshal(raw, &r.CoveredCalls); err != nil {
			return fmt.Errorf("invalid covered call recommendations for %s: %w", r.Ticker, err)
		}
	case StrategyCheapProtection:
		if err := json.Unmarshal(raw, &r.Collars); err != nil {
			return fmt.Errorf("invalid collar recommendations for %s: %w", r.Ticker, err)
		}
	}
	return nil
}

// MarshalJSON writes the strategy's list back under optionRecommendations
func (r OpportunityRecord) MarshalJSON() ([]byte, error) {
	type alias OpportunityRecord
	aux := struct {
		alias
		OptionRecommendations any `json:"optionRecommendations,omitempty"`
	}{alias: alias(r)}

	switch {
	case r.IsIncome() && len(r.CoveredCalls) > 0:
		aux.OptionRecommendations = r.CoveredCalls
	case r.IsProtection() && len(r.Collars) > 0:
		aux.OptionRecommendations = r.Collars
	}
	return json.Marshal(aux)
}

// ValidateRecords checks the snapshot invariants and returns every violation found.
// An empty result means the snapshot is well formed.
func ValidateRecords(records []OpportunityRecord) []error {
	var problems []error
	seen := make(map[string]bool, len(records))

	for i := range records {
		rec := &records[i]
		if rec.Ticker == "" {
			problems = append(problems, fmt.Errorf("record %d: empty ticker", i))
		} else if seen[rec.Ticker] {
			problems = append(problems, fmt.Errorf("record %d: duplicate ticker %s", i, rec.Ticker))
		}
		seen[rec.Ticker] = true

		if rec.Price.IsNegative() {
			problems = append(problems, fmt.Errorf("%s: negative price %s", rec.Ticker, rec.Price))
		}
		if rec.IVRank < 0 {
			problems = append(problems, fmt.Errorf("%s: negative ivRank %.1f", rec.Ticker, rec.IVRank))
		}
		if rec.PutCallRatio < 0 {
			problems = append(problems, fmt.Errorf("%s: negative putCallRatio %.2f", rec.Ticker, rec.PutCallRatio))
		}
		if rec.DaysToExpiration < 0 {
			problems = append(problems, fmt.Errorf("%s: negative daysToExpiration %d", rec.Ticker, rec.DaysToExpiration))
		}
		if !rec.Strategy.Valid() {
			problems = append(problems, fmt.Errorf("%s: unknown strategy %q", rec.Ticker, rec.Strategy))
		}
	}
	return problems
}
