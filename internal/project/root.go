package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the project configuration file looked up by the CLI.
const FileName = "aster.toml"

// FindAsterToml returns the nearest aster.toml at or above startDir. A
// directory that happens to be called aster.toml is skipped.
func FindAsterToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindProjectRoot returns the directory holding the nearest aster.toml.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	path, ok, err := FindAsterToml(startDir)
	if !ok {
		return "", false, err
	}
	return filepath.Dir(path), true, nil
}
