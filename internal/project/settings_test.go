package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/LaserNest/internal/model"
)

func TestSaveAndLoadSettingsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s := model.DefaultSettings()
	s.MachineType = "Fiber Laser 3000W"
	s.DefaultSheetWidth = 1500
	s.Operating.LaborCostPerMinute = 2000
	s.Materials = s.Materials[:2]

	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if loaded.MachineType != "Fiber Laser 3000W" {
		t.Errorf("expected machine type to round-trip, got %q", loaded.MachineType)
	}
	if loaded.DefaultSheetWidth != 1500 {
		t.Errorf("expected sheet width 1500, got %f", loaded.DefaultSheetWidth)
	}
	if loaded.Operating.LaborCostPerMinute != 2000 {
		t.Errorf("expected labor cost 2000, got %f", loaded.Operating.LaborCostPerMinute)
	}
	if len(loaded.Materials) != 2 {
		t.Errorf("expected saved catalog of 2 materials to replace defaults, got %d", len(loaded.Materials))
	}
}

func TestSaveAndLoadSettingsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s := model.DefaultSettings()
	s.Currency = "EUR"
	s.CurrencyDecimals = 2
	s.SpeedTable = []model.SpeedEntry{{MaterialID: "ms", Thickness: 2, Speed: 3100}}

	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "currency = \"EUR\"") {
		t.Errorf("expected TOML output, got:\n%s", data)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded.Currency != "EUR" || loaded.CurrencyDecimals != 2 {
		t.Errorf("expected EUR with 2 decimals, got %s/%d", loaded.Currency, loaded.CurrencyDecimals)
	}
	if len(loaded.SpeedTable) != 1 || loaded.SpeedTable[0].Speed != 3100 {
		t.Errorf("unexpected speed table %+v", loaded.SpeedTable)
	}
	if len(loaded.Materials) != len(model.DefaultMaterials()) {
		t.Errorf("expected %d materials, got %d", len(model.DefaultMaterials()), len(loaded.Materials))
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "settings.json")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if s.MachineType != model.DefaultSettings().MachineType {
		t.Errorf("expected default machine type, got %q", s.MachineType)
	}
}

func TestLoadSettingsPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := "default_sheet_width = 1000\n\n[operating]\ngas_tank_volume = -3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.DefaultSheetWidth != 1000 {
		t.Errorf("expected width 1000, got %f", s.DefaultSheetWidth)
	}
	if s.DefaultSheetHeight != model.DefaultSheetHeight {
		t.Errorf("expected default height, got %f", s.DefaultSheetHeight)
	}
	if s.Operating.GasTankVolume != 6 {
		t.Errorf("expected invalid tank volume to be sanitized to 6, got %f", s.Operating.GasTankVolume)
	}
	if s.Operating.LaborCostPerMinute != 1500 {
		t.Errorf("expected default labor cost, got %f", s.Operating.LaborCostPerMinute)
	}
	if len(s.Materials) == 0 {
		t.Error("expected default materials")
	}
}

func TestLoadSettingsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultPathsUnderConfigDir(t *testing.T) {
	dir := DefaultConfigDir()
	if filepath.Base(dir) != ".lasernest" {
		t.Errorf("expected ~/.lasernest, got %s", dir)
	}
	for _, p := range []string{DefaultConfigPath(), DefaultHistoryPath(), DefaultProfilesPath()} {
		if filepath.Dir(p) != dir {
			t.Errorf("expected %s to live in %s", p, dir)
		}
	}
}
