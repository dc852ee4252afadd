package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/LaserNest/internal/gcode"
)

// LaserProfile is a named set of program generator settings, such as one
// per machine or per material family.
type LaserProfile struct {
	Name     string         `json:"name" toml:"name"`
	Settings gcode.Settings `json:"settings" toml:"settings"`
}

type profileFile struct {
	Profiles []LaserProfile `json:"profiles" toml:"profiles"`
}

// DefaultProfilesPath returns the default file path for laser profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveProfiles saves laser profiles to a JSON or TOML file.
func SaveProfiles(path string, profiles []LaserProfile) error {
	return writeFile(path, profileFile{Profiles: profiles})
}

// LoadProfiles loads laser profiles from a file.
// Returns an empty slice if the file does not exist.
func LoadProfiles(path string) ([]LaserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LaserProfile{}, nil
		}
		return nil, err
	}

	var f profileFile
	if err := decode(path, data, &f); err != nil {
		return nil, err
	}
	for i := range f.Profiles {
		f.Profiles[i].Settings = f.Profiles[i].Settings.Sanitized()
	}
	if f.Profiles == nil {
		f.Profiles = []LaserProfile{}
	}
	return f.Profiles, nil
}

// FindProfile returns the profile with the given name.
func FindProfile(profiles []LaserProfile, name string) (LaserProfile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return LaserProfile{}, false
}

// UpsertProfile replaces the profile with the same name or appends it.
func UpsertProfile(profiles []LaserProfile, p LaserProfile) ([]LaserProfile, error) {
	if p.Name == "" {
		return profiles, errors.New("profile has no name")
	}
	p.Settings = p.Settings.Sanitized()
	for i := range profiles {
		if profiles[i].Name == p.Name {
			profiles[i] = p
			return profiles, nil
		}
	}
	return append(profiles, p), nil
}
