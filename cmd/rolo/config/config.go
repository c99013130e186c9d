// Package config stores per-user preferences for the interactive
// session, separate from the application config in internal/config.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Prefs holds user preferences.
type Prefs struct {
	Version         int    `json:"version"`
	Theme           string `json:"theme"` // "light", "dark" or "auto"
	ShowTips        bool   `json:"show_tips"`
	BirthdayHorizon int    `json:"birthday_horizon,omitempty"` // overrides the app config when > 0
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{
		Version:  1,
		Theme:    "auto",
		ShowTips: true,
	}
}

// PrefsFile returns the preferences path inside the data directory.
func PrefsFile(dataDir string) string {
	return filepath.Join(dataDir, "prefs.json")
}

// Load reads preferences from disk. A missing file yields defaults.
func Load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return DefaultPrefs(), err
	}

	prefs := DefaultPrefs()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return DefaultPrefs(), err
	}
	return prefs, nil
}

// Save writes preferences to disk atomically: write a temp file in the
// same directory, then rename over the target.
func Save(path string, prefs Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".prefs-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
