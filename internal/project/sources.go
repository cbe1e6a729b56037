package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the extension of SafeC source files.
const SourceExt = ".sc"

// ErrNoSources is returned when the given paths contain no SafeC files.
var ErrNoSources = errors.New("no " + SourceExt + " files found")

// ListSources expands files and directories into a sorted, duplicate-free
// list of SafeC sources. Directories are walked recursively; hidden
// subdirectories are skipped. Explicit files are accepted whatever their
// extension.
func ListSources(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, SourceExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, ErrNoSources
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
