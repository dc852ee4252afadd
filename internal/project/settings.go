package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/LaserNest/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.lasernest/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lasernest")
}

// DefaultConfigPath returns the default path for the settings file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "settings.json")
}

// DefaultHistoryPath returns the default path of the quote history database.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultConfigDir(), "history.db")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// writeFile encodes v as TOML or indented JSON depending on the path's
// extension. It creates any missing parent directories automatically.
func writeFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// decode parses data as TOML or JSON depending on the path's extension.
func decode(path string, data []byte, v interface{}) error {
	if isTOML(path) {
		_, err := toml.Decode(string(data), v)
		return err
	}
	return json.Unmarshal(data, v)
}

// SaveSettings persists settings to the given path as JSON, or as TOML when
// the path ends in .toml.
func SaveSettings(path string, s model.Settings) error {
	if err := writeFile(path, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LoadSettings reads settings from the given path. If the file does not
// exist, it returns DefaultSettings with no error. Loaded values are
// sanitized; fields missing from the file keep their defaults.
func LoadSettings(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, err
	}

	s := model.DefaultSettings()
	// Lists in the file replace the defaults instead of merging into them.
	s.Materials = nil
	s.SpeedTable = nil
	if err := decode(path, data, &s); err != nil {
		return model.Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return s.Sanitized(), nil
}
