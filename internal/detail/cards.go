package detail

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// CoveredCallCard is one covered call recommendation, formatted
type CoveredCallCard struct {
	Title            string `json:"title"`
	OTM              string `json:"otm"`
	DaysToExpiration int    `json:"daysToExpiration"`
	Upside           string `json:"upside"`
	OptionYield      string `json:"optionYield"`
	AnnualizedYield  string `json:"annualizedYield"`
	Premium          string `json:"premium"`
	IV               string `json:"iv,omitempty"`
	Recommended      bool   `json:"recommended"`
}

// CollarCard is one collar recommendation, formatted
type CollarCard struct {
	Title            string `json:"title"`
	DaysToExpiration int    `json:"daysToExpiration"`
	NetCost          string `json:"netCost"`
	NetCostTone      string `json:"netCostTone"`
	Downside         string `json:"downsideProtection"`
	UpsideCap        string `json:"upsideCap"`
	Legs             string `json:"legs"`
	Recommended      bool   `json:"recommended"`
}

func coveredCallCard(rec *models.CoveredCallRecommendation) CoveredCallCard {
	card := CoveredCallCard{
		Title:            dollars(rec.Strike) + " Call",
		OTM:              percentLabel(rec.OTMPercent) + "% OTM",
		DaysToExpiration: rec.DaysToExpiration,
		Upside:           fmt.Sprintf("+%.1f%%", rec.UpsidePercent),
		OptionYield:      fmt.Sprintf("%.2f%%", rec.OptionYield),
		AnnualizedYield:  fmt.Sprintf("%.1f%%", rec.AnnualizedYield),
		Premium:          dollars(rec.Premium),
		Recommended:      rec.Recommended,
	}
	// A zero IV means the chain had no quote; hide it like a missing one.
	if rec.IV != nil && *rec.IV != 0 {
		card.IV = fmt.Sprintf("%.1f%%", *rec.IV)
	}
	return card
}

func collarCard(rec *models.CollarRecommendation) CollarCard {
	tone := "debit"
	if rec.NetCost.IsNegative() {
		tone = "credit"
	}
	return CollarCard{
		Title:            dollars(rec.PutStrike) + " Put / " + dollars(rec.CallStrike) + " Call",
		DaysToExpiration: rec.DaysToExpiration,
		NetCost:          signedDollars(rec.NetCost) + " (" + signedPercent(rec.NetCostPercent) + ")",
		NetCostTone:      tone,
		Downside:         fmt.Sprintf("-%.1f%%", rec.DownsideProtection),
		UpsideCap:        fmt.Sprintf("+%.1f%%", rec.UpsideCap),
		Legs: fmt.Sprintf("Put: %s (%s%% OTM) | Call: %s (%s%% OTM)",
			dollars(rec.PutPremium), percentLabel(rec.PutOTMPercent),
			dollars(rec.CallPremium), percentLabel(rec.CallOTMPercent)),
		Recommended: rec.Recommended,
	}
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// signedDollars renders +$1.20 for debits and -$0.15 for credits
func signedDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

func signedPercent(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// percentLabel prints OTM targets as given (5, 7.5) without trailing zeros
func percentLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
