package engine

import (
	"math"

	"github.com/piwi3910/LaserNest/internal/model"
	"github.com/piwi3910/LaserNest/internal/numeric"
)

// EstimateInput gathers everything a cost estimation needs.
type EstimateInput struct {
	Nesting    *model.NestingResult
	Catalog    model.Catalog
	MaterialID string
	Thickness  float64 // mm
	Scale      float64
	Unit       model.Unit
	Quantity   int
	Operating  model.OperatingSettings
	// Source is the part source the nesting was computed from. A FileSource
	// with selected path data replaces the perimeter cutting-length estimate.
	Source PartSource
	// SpeedTable entries take precedence over the built-in table.
	SpeedTable []model.SpeedEntry
}

// CuttingSpeed returns the feed rate in mm/min for a material and thickness:
// a measured entry when one exists, otherwise the nominal speed slowed by
// the square root of the thickness.
func CuttingSpeed(m model.Material, thickness float64, overrides []model.SpeedEntry) float64 {
	if s, ok := model.LookupSpeed(overrides, m.ID, thickness); ok {
		return s
	}
	if s, ok := model.LookupSpeed(model.DefaultSpeedTable(), m.ID, thickness); ok {
		return s
	}
	nominal := numeric.ValidOrDefault(m.CuttingSpeed, numeric.NonNegative, 0)
	if !numeric.Positive(thickness) {
		return nominal
	}
	return numeric.SafeDivide(nominal, math.Sqrt(thickness), 0)
}

// ComputeEstimation derives cutting time and costs from a nesting result.
// It fails only on missing preconditions; numeric faults degrade to zero.
func ComputeEstimation(in EstimateInput) (model.EstimationResult, error) {
	if in.Nesting == nil || len(in.Nesting.Layouts) == 0 {
		return model.EstimationResult{}, ErrNoNesting
	}
	material := in.Catalog.FindMaterialByID(in.MaterialID)
	if material == nil {
		return model.EstimationResult{}, &MaterialNotFoundError{ID: in.MaterialID}
	}
	if unfit := in.Nesting.UnfitLayouts(); len(unfit) > 0 {
		l := unfit[0]
		if fitsSheet(l.PartWidth, l.PartHeight, l.SheetWidth, l.SheetHeight) {
			return model.EstimationResult{}, &CapacityExceededError{
				PartName:    l.PartName,
				Width:       l.PartWidth,
				Height:      l.PartHeight,
				SheetWidth:  l.SheetWidth,
				SheetHeight: l.SheetHeight,
				Limit:       MaxPartsPerSheet,
			}
		}
		return model.EstimationResult{}, &PartTooLargeError{
			PartName:    l.PartName,
			Width:       l.PartWidth,
			Height:      l.PartHeight,
			SheetWidth:  l.SheetWidth,
			SheetHeight: l.SheetHeight,
		}
	}

	ops := in.Operating.Sanitized()
	scale := numeric.ValidOrDefault(in.Scale, numeric.Positive, model.DefaultScale)
	unit := model.ParseUnit(string(in.Unit))
	qty := float64(numeric.PositiveIntOrDefault(in.Quantity, model.DefaultQuantity))

	res := model.EstimationResult{
		MaterialID: material.ID,
		Thickness:  in.Thickness,
		Quantity:   int(qty),
	}
	res.CuttingSpeed = CuttingSpeed(*material, in.Thickness, in.SpeedTable)

	for _, l := range in.Nesting.Layouts {
		res.TotalCuttingLength += 2 * (l.PartWidth + l.PartHeight) * qty
		res.ProcessedArea += l.PartWidth * l.PartHeight * qty
		res.TotalSheets += l.TotalSheets
		sheetM2 := numeric.SafeDivide(l.SheetArea(), 1_000_000, 1)
		res.MaterialCost += sheetM2 * ops.SheetPricePerM2 * float64(l.TotalSheets)
	}

	if fs, ok := in.Source.(FileSource); ok {
		var selected float64
		for _, f := range fs.Files {
			selected += f.SelectedPathLength()
		}
		if numeric.Positive(selected) {
			res.TotalCuttingLength = selected * scale * unit.Multiplier() * qty
		}
	}

	res.CuttingTime = numeric.SafeDivide(res.TotalCuttingLength, res.CuttingSpeed, 0)
	res.GasUsage = numeric.SafeDivide(ops.GasFlowRate*res.CuttingTime, 1000, 0)
	res.GasTanks = numeric.SafeDivide(res.GasUsage, ops.GasTankVolume, 0)
	res.LaborCost = res.CuttingTime * ops.LaborCostPerMinute
	res.GasCost = res.GasUsage * ops.GasPricePerVolume
	res.TotalCost = res.MaterialCost + res.LaborCost + res.GasCost
	res.PricePerPiece = numeric.SafeDivide(res.TotalCost, qty*float64(in.Nesting.TotalParts), 0)
	res.WastePercent = 100 - in.Nesting.GlobalUtilization

	return res, nil
}
