package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// configSubdir is where postbox keeps its files below the home directory.
const configSubdir = ".config/" + Name

// memoryDatabase names an sqlite database that never touches disk.
const memoryDatabase = ":memory:"

// ConfigDir returns ~/.config/postbox, creating it on first use.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	dir := filepath.Join(home, configSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// ResolveFilePath maps a configured file name to a path. A file present in
// the working directory wins; anything else lives in ConfigDir.
func ResolveFilePath(name string) string {
	switch {
	case name == memoryDatabase, filepath.IsAbs(name):
		return name
	case fileExists(name):
		return name
	}
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
