package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/LaserNest/internal/model"
)

// QuoteLine is a single billable line of a customer quote.
type QuoteLine struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Measure  string          `json:"measure"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// Quote is an estimation rounded to the currency's precision.
type Quote struct {
	Currency      string          `json:"currency"`
	Decimals      int32           `json:"decimals"`
	MaterialName  string          `json:"material_name"`
	Thickness     float64         `json:"thickness"`
	Quantity      int             `json:"quantity"`
	Lines         []QuoteLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PricePerPiece decimal.Decimal `json:"price_per_piece"`
	Estimation    model.EstimationResult
}

// BuildQuote turns an estimation into material, labor and gas lines.
// Amounts are rounded to decimals places; the total is the sum of the
// rounded lines so a printed quote always adds up.
func BuildQuote(est model.EstimationResult, material model.Material, ops model.OperatingSettings, currency string, decimals int32) Quote {
	round := func(f float64) decimal.Decimal {
		return decimal.NewFromFloat(f).Round(decimals)
	}

	sheetRate := decimal.NewFromFloat(ops.SheetPricePerM2)
	laborRate := decimal.NewFromFloat(ops.LaborCostPerMinute)
	gasRate := decimal.NewFromFloat(ops.GasPricePerVolume)

	lines := []QuoteLine{
		{
			ID:       "material",
			Label:    fmt.Sprintf("%s %.1f mm sheets", material.Name, est.Thickness),
			Measure:  "sheets",
			Quantity: decimal.NewFromInt(int64(est.TotalSheets)),
			Rate:     sheetRate,
			Amount:   round(est.MaterialCost),
		},
		{
			ID:       "labor",
			Label:    "Laser cutting time",
			Measure:  "minutes",
			Quantity: decimal.NewFromFloat(est.CuttingTime).Round(2),
			Rate:     laborRate,
			Amount:   round(est.LaborCost),
		},
		{
			ID:       "gas",
			Label:    fmt.Sprintf("Assist gas (%s)", material.Gas),
			Measure:  "m3",
			Quantity: decimal.NewFromFloat(est.GasUsage).Round(4),
			Rate:     gasRate,
			Amount:   round(est.GasCost),
		},
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}

	return Quote{
		Currency:      currency,
		Decimals:      decimals,
		MaterialName:  material.Name,
		Thickness:     est.Thickness,
		Quantity:      est.Quantity,
		Lines:         lines,
		Total:         total,
		PricePerPiece: round(est.PricePerPiece),
		Estimation:    est,
	}
}

// FormatMoney renders an amount with thousands separators and currency code.
func FormatMoney(d decimal.Decimal, currency string, decimals int32) string {
	s := d.StringFixed(decimals)
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	var grouped []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, intPart[i])
	}
	out := sign + string(grouped) + frac
	if currency == "" {
		return out
	}
	return currency + " " + out
}
