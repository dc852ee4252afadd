package model

import "math"

// GasType is the assist gas used by the laser for a material.
type GasType string

const (
	GasOxygen   GasType = "oxygen"
	GasNitrogen GasType = "nitrogen"
	GasAir      GasType = "air"
)

// Material is a sheet material the shop can cut.
type Material struct {
	ID            string    `json:"id" toml:"id"`
	Name          string    `json:"name" toml:"name"`
	Thicknesses   []float64 `json:"thickness" toml:"thickness"`           // mm
	PricePerMeter float64   `json:"price_per_meter" toml:"price_per_meter"` // per meter of cut
	CuttingSpeed  float64   `json:"cutting_speed" toml:"cutting_speed"`     // nominal mm/min
	Gas           GasType   `json:"gas" toml:"gas"`
}

// NewMaterial creates a Material with the given properties.
func NewMaterial(id, name string, thicknesses []float64, pricePerMeter, cuttingSpeed float64, gas GasType) Material {
	return Material{
		ID:            id,
		Name:          name,
		Thicknesses:   thicknesses,
		PricePerMeter: pricePerMeter,
		CuttingSpeed:  cuttingSpeed,
		Gas:           gas,
	}
}

// HasThickness reports whether t is one of the material's stocked thicknesses.
func (m Material) HasThickness(t float64) bool {
	for _, v := range m.Thicknesses {
		if math.Abs(v-t) < 1e-9 {
			return true
		}
	}
	return false
}

// DefaultMaterials returns the stock material catalog of a fiber laser shop.
func DefaultMaterials() []Material {
	return []Material{
		NewMaterial("ss304", "Stainless Steel 304", []float64{0.5, 1, 1.5, 2, 3}, 15000, 3000, GasNitrogen),
		NewMaterial("ss316", "Stainless Steel 316", []float64{0.5, 1, 1.5, 2, 3}, 20000, 2800, GasNitrogen),
		NewMaterial("ms", "Mild Steel", []float64{1, 2, 3, 4, 5, 6}, 8000, 4000, GasOxygen),
		NewMaterial("aluminum", "Aluminium", []float64{1, 2, 3, 4, 5}, 12000, 5000, GasNitrogen),
		NewMaterial("galvanized", "Galvanized Steel", []float64{0.5, 1, 1.5, 2}, 10000, 3500, GasAir),
	}
}

// Catalog is the list of materials offered in a quote.
type Catalog []Material

// FindMaterialByID returns a pointer to the material with the given ID, or nil.
func (c Catalog) FindMaterialByID(id string) *Material {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}
	return nil
}

// MaterialNames returns the display names for dropdowns and listings.
func (c Catalog) MaterialNames() []string {
	names := make([]string, len(c))
	for i, m := range c {
		names[i] = m.Name
	}
	return names
}

// SpeedEntry is a measured cutting speed for one material and thickness.
type SpeedEntry struct {
	MaterialID string  `json:"material_id" toml:"material_id"`
	Thickness  float64 `json:"thickness" toml:"thickness"` // mm
	Speed      float64 `json:"speed" toml:"speed"`         // mm/min
}

// DefaultSpeedTable lists measured speeds for the default catalog on a
// 1.5 kW fiber source. Thicknesses without an entry fall back to the
// material's nominal speed.
func DefaultSpeedTable() []SpeedEntry {
	return []SpeedEntry{
		{MaterialID: "ss304", Thickness: 0.5, Speed: 6000},
		{MaterialID: "ss304", Thickness: 1, Speed: 4500},
		{MaterialID: "ss304", Thickness: 1.5, Speed: 3200},
		{MaterialID: "ss316", Thickness: 0.5, Speed: 5600},
		{MaterialID: "ss316", Thickness: 1, Speed: 4200},
		{MaterialID: "ms", Thickness: 1, Speed: 6500},
		{MaterialID: "ms", Thickness: 3, Speed: 2600},
		{MaterialID: "ms", Thickness: 6, Speed: 1200},
		{MaterialID: "aluminum", Thickness: 1, Speed: 7000},
		{MaterialID: "aluminum", Thickness: 3, Speed: 2200},
		{MaterialID: "galvanized", Thickness: 1, Speed: 5000},
	}
}

// LookupSpeed finds a measured speed for a material and thickness.
func LookupSpeed(table []SpeedEntry, materialID string, thickness float64) (float64, bool) {
	for _, e := range table {
		if e.MaterialID == materialID && math.Abs(e.Thickness-thickness) < 1e-9 && e.Speed > 0 {
			return e.Speed, true
		}
	}
	return 0, false
}
