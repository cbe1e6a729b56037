package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ManifestName is the file name of a SafeC project manifest.
const ManifestName = "safec.toml"

// FindManifest returns the nearest safec.toml in startDir or one of its
// parents. A directory named safec.toml is skipped.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := range ancestors(dir) {
		candidate := filepath.Join(dir, ManifestName)
		st, statErr := os.Stat(candidate)
		switch {
		case statErr == nil && st.Mode().IsRegular():
			return candidate, true, nil
		case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, statErr)
		}
	}
	return "", false, nil
}

// ancestors yields dir and each parent up to the filesystem root.
func ancestors(dir string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
