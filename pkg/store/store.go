// Package store scans config-store directories for usable
// configuration snapshots.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
)

// LatestName is the symlink marking the most recently stored config
// in each store subdirectory.
const LatestName = "latest"

// Entry is one usable file in a config-store directory
type Entry struct {
	// Name is the file basename
	Name string

	// Path is the absolute file path
	Path string
}

// Scan lists the usable config files in dir, keyed by basename.
//
// Regular files are included, symlinks are followed (so "latest"
// appears under its own name). Hidden files, README files and *.tmp
// leftovers are skipped. A missing directory yields an ErrStoreMissing
// error the callers branch on.
func Scan(dir string) (map[string]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrStoreMissing, "config store directory missing: %s", dir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read config store directory %s", dir)
	}

	entries := make(map[string]Entry)
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") ||
			strings.HasPrefix(name, "README") ||
			strings.HasSuffix(name, ".tmp") {
			continue
		}

		path := filepath.Join(dir, name)

		// Stat follows symlinks; dangling links and non-files drop out
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		entries[name] = Entry{Name: name, Path: path}
	}

	return entries, nil
}

// SortedNames returns the entry names in lexicographic order
func SortedNames(entries map[string]Entry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
