package engine

import (
	"github.com/piwi3910/LaserNest/internal/model"
)

// MaterialOption is the estimated cost of one material and thickness.
type MaterialOption struct {
	MaterialID    string
	MaterialName  string
	Thickness     float64
	Gas           model.GasType
	CuttingSpeed  float64
	CuttingTime   float64
	TotalCost     float64
	PricePerPiece float64
	Err           error
}

// CompareMaterials estimates the same nesting result against every stocked
// thickness of every material in the catalog, in catalog order. This enables
// side-by-side what-if pricing for a customer.
func CompareMaterials(in EstimateInput) []MaterialOption {
	var options []MaterialOption

	for _, m := range in.Catalog {
		for _, t := range m.Thicknesses {
			scenario := in
			scenario.MaterialID = m.ID
			scenario.Thickness = t

			opt := MaterialOption{
				MaterialID:   m.ID,
				MaterialName: m.Name,
				Thickness:    t,
				Gas:          m.Gas,
			}
			res, err := ComputeEstimation(scenario)
			if err != nil {
				opt.Err = err
			} else {
				opt.CuttingSpeed = res.CuttingSpeed
				opt.CuttingTime = res.CuttingTime
				opt.TotalCost = res.TotalCost
				opt.PricePerPiece = res.PricePerPiece
			}
			options = append(options, opt)
		}
	}

	return options
}

// CheapestOption returns the lowest-cost option without an error, or false.
func CheapestOption(options []MaterialOption) (MaterialOption, bool) {
	var best MaterialOption
	found := false
	for _, o := range options {
		if o.Err != nil {
			continue
		}
		if !found || o.TotalCost < best.TotalCost {
			best = o
			found = true
		}
	}
	return best, found
}
