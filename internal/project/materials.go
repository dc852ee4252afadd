package project

import (
	"fmt"
	"os"

	"github.com/piwi3910/LaserNest/internal/model"
)

// MaterialLibrary is the exchange format for sharing material catalogs
// between machines.
type MaterialLibrary struct {
	Materials  []model.Material   `json:"materials" toml:"materials"`
	SpeedTable []model.SpeedEntry `json:"speed_table,omitempty" toml:"speed_table"`
}

// ExportMaterials writes the catalog and speed table of the settings to path.
func ExportMaterials(path string, s model.Settings) error {
	lib := MaterialLibrary{Materials: s.Materials, SpeedTable: s.SpeedTable}
	if err := writeFile(path, lib); err != nil {
		return fmt.Errorf("failed to export materials: %w", err)
	}
	return nil
}

// ImportMaterials reads a material library from path and merges it into the
// settings. Materials whose ID already exists are skipped; speed entries for
// an existing (material, thickness) pair are skipped. It returns the merged
// settings and the number of materials added.
func ImportMaterials(path string, existing model.Settings) (model.Settings, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, 0, err
	}
	var lib MaterialLibrary
	if err := decode(path, data, &lib); err != nil {
		return existing, 0, fmt.Errorf("failed to parse material library: %w", err)
	}

	merged := existing
	merged.Materials = append([]model.Material(nil), existing.Materials...)
	merged.SpeedTable = append([]model.SpeedEntry(nil), existing.SpeedTable...)

	ids := make(map[string]bool, len(merged.Materials))
	for _, m := range merged.Materials {
		ids[m.ID] = true
	}
	added := 0
	for _, m := range lib.Materials {
		if m.ID == "" || ids[m.ID] {
			continue
		}
		merged.Materials = append(merged.Materials, m)
		ids[m.ID] = true
		added++
	}

	type speedKey struct {
		id        string
		thickness float64
	}
	speeds := make(map[speedKey]bool, len(merged.SpeedTable))
	for _, e := range merged.SpeedTable {
		speeds[speedKey{e.MaterialID, e.Thickness}] = true
	}
	for _, e := range lib.SpeedTable {
		k := speedKey{e.MaterialID, e.Thickness}
		if speeds[k] {
			continue
		}
		merged.SpeedTable = append(merged.SpeedTable, e)
		speeds[k] = true
	}

	return merged, added, nil
}
