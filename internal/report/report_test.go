package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/LaserNest/internal/engine"
	"github.com/piwi3910/LaserNest/internal/export"
	"github.com/piwi3910/LaserNest/internal/history"
	"github.com/piwi3910/LaserNest/internal/model"
)

func TestNestingReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewWithColor(&buf, false)

	r.Nesting(model.NestingResult{
		Layouts: []model.SheetLayout{
			{PartName: "Bracket", PartWidth: 200, PartHeight: 100, PartsPerSheet: 40, TotalSheets: 3, Utilization: 26.9},
			{PartName: "Huge", PartWidth: 5000, PartHeight: 100, WastePercent: 100},
		},
		TotalSheets:       3,
		GlobalUtilization: 13.4,
		TotalParts:        2,
	})

	out := buf.String()
	assert.Contains(t, out, "Nesting\n")
	assert.Contains(t, out, "Bracket")
	assert.Contains(t, out, "DOES NOT FIT")
	assert.Contains(t, out, "Parts: 2  Sheets: 3  Average utilization: 13.4%")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestQuoteReport(t *testing.T) {
	est := model.EstimationResult{
		MaterialID:         "ms",
		Thickness:          3,
		Quantity:           10,
		CuttingSpeed:       2600,
		TotalCuttingLength: 12000,
		CuttingTime:        4.615,
		MaterialCost:       446520,
		LaborCost:          6923.08,
		GasCost:            4615.38,
		PricePerPiece:      45805.85,
		GasUsage:           0.0923,
		GasTanks:           0.0154,
		TotalSheets:        1,
	}
	m := model.NewMaterial("ms", "Mild Steel", []float64{3}, 12000, 4000, model.GasOxygen)
	q := export.BuildQuote(est, m, model.DefaultOperatingSettings(), "IDR", 0)

	var buf bytes.Buffer
	NewWithColor(&buf, false).Quote(q)
	out := buf.String()

	assert.Contains(t, out, "Quote: Mild Steel 3.0 mm x 10")
	assert.Contains(t, out, "IDR 446,520")
	assert.Contains(t, out, export.FormatMoney(q.Total, "IDR", 0))
	assert.Contains(t, out, "Price per piece: IDR 45,806")
	assert.Contains(t, out, "12000 mm at 2600 mm/min")
}

func TestComparisonMarksCheapest(t *testing.T) {
	options := []engine.MaterialOption{
		{MaterialID: "ss304", MaterialName: "SS 304", Thickness: 1, CuttingSpeed: 4500, TotalCost: 900000, PricePerPiece: 90000},
		{MaterialID: "ms", MaterialName: "Mild Steel", Thickness: 1, CuttingSpeed: 4000, TotalCost: 500000, PricePerPiece: 50000},
		{MaterialID: "x", MaterialName: "Broken", Thickness: 2, Err: errors.New("part too large")},
	}

	var buf bytes.Buffer
	NewWithColor(&buf, false).Comparison(options, "IDR", 0)

	var cheapestLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "*") {
			cheapestLine = line
		}
	}
	assert.Contains(t, cheapestLine, "Mild Steel")
	assert.Contains(t, cheapestLine, "IDR 500,000")
	assert.Contains(t, buf.String(), "part too large")
}

func TestMaterialsReport(t *testing.T) {
	var buf bytes.Buffer
	NewWithColor(&buf, false).Materials(model.Catalog(model.DefaultMaterials()), model.DefaultSpeedTable())

	out := buf.String()
	assert.Contains(t, out, "ss304")
	assert.Contains(t, out, "4500", "speed table entry for ss304 1 mm")
	assert.Contains(t, out, "nitrogen")
	assert.Contains(t, out, "List Price/m")
	assert.Contains(t, out, "15000", "ss304 list price per meter")
	assert.Contains(t, out, "8000", "mild steel list price per meter")
}

func TestHistoryReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewWithColor(&buf, false)

	r.History(nil)
	assert.Contains(t, buf.String(), "No runs recorded.")

	buf.Reset()
	r.History([]history.Run{{
		ID:           "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		MaterialName: "Mild Steel",
		Thickness:    3,
		Quantity:     10,
		Sheets:       2,
		Currency:     "IDR",
		TotalCost:    decimal.RequireFromString("1234567"),
		Sources:      []string{"a.dxf", "b.csv"},
	}})
	out := buf.String()
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "0f8fad5b-d9cb")
	assert.Contains(t, out, "IDR 1,234,567")
	assert.Contains(t, out, "a.dxf, b.csv")
}

func TestWarningsColor(t *testing.T) {
	var buf bytes.Buffer
	NewWithColor(&buf, false).Warnings([]string{"part too large"})
	assert.Equal(t, "warning: part too large\n", buf.String())
}
