package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in file paths
// Examples:
//   - "~/data/file.txt" -> "/home/user/data/file.txt"
//   - "$HOME/data" -> "/home/user/data"
//   - "/abs/path" -> "/abs/path" (unchanged)
func ExpandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		if path == "~" {
			return homeDir, nil
		}

		path = filepath.Join(homeDir, path[2:])
	}

	return path, nil
}

// DataPath returns a path under the fitsync data directory
// Priority: $XDG_DATA_HOME/fitsync > ~/.local/share/fitsync
func DataPath(elem ...string) (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(append([]string{base, "fitsync"}, elem...)...), nil
}

// ConfigPath returns a path under the fitsync config directory
// Priority: $XDG_CONFIG_HOME/fitsync > ~/.config/fitsync
func ConfigPath(elem ...string) (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(append([]string{base, "fitsync"}, elem...)...), nil
}
