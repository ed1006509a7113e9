package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PreferencesFile is the name of the engine preferences file.
const PreferencesFile = "preferences.xiconfig"

// WritePreferences writes p to dir/preferences.xiconfig, creating dir if
// needed, and returns the file path. The file is replaced atomically.
func WritePreferences(dir string, p Preferences) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding preferences: %w", err)
	}

	path := filepath.Join(dir, PreferencesFile)
	tmp, err := os.CreateTemp(dir, PreferencesFile+".*")
	if err != nil {
		return "", fmt.Errorf("writing preferences: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing preferences: %w", err)
	}
	return path, nil
}

// ReadPreferences reads a preferences file written by WritePreferences.
func ReadPreferences(path string) (Preferences, error) {
	var p Preferences
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return p, nil
}
