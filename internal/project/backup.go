package project

import (
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/LaserNest/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string         `json:"version" toml:"version"`
	CreatedAt string         `json:"created_at" toml:"created_at"`
	Settings  model.Settings `json:"settings" toml:"settings"`
	Profiles  []LaserProfile `json:"profiles,omitempty" toml:"profiles"`
}

// ExportAllData exports settings and laser profiles to a single file at the
// specified path (JSON, or TOML for a .toml path).
func ExportAllData(exportPath string, settings model.Settings, profiles []LaserProfile) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Profiles:  profiles,
	}
	if err := writeFile(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file and returns the contained data.
// The caller is responsible for applying the imported settings.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := decode(importPath, data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	backup.Settings = backup.Settings.Sanitized()
	return backup, nil
}
