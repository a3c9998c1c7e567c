// Package core implements the list, restore and backup operations on
// top of the build-type detector and the config-store scanner.
package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kbuild-tools/kconfig-select/pkg/buildtype"
	"github.com/kbuild-tools/kconfig-select/pkg/errors"
	"github.com/kbuild-tools/kconfig-select/pkg/fsutil"
	"github.com/kbuild-tools/kconfig-select/pkg/git"
	"github.com/kbuild-tools/kconfig-select/pkg/logging"
	"github.com/kbuild-tools/kconfig-select/pkg/store"
)

// DefaultCommitMessage is used for automatic git commits when no
// message is configured.
const DefaultCommitMessage = "update config"

// DefaultBackupName returns the dated default name for backups,
// e.g. "config_2024-01-01".
func DefaultBackupName(now time.Time) string {
	return "config_" + now.Format("2006-01-02")
}

// ListOptions controls the list operation
type ListOptions struct {
	BuildType buildtype.BuildType

	// Long prints absolute paths instead of basenames
	Long bool

	Stdout io.Writer
}

// List prints the usable config files of the store subdirectory,
// sorted by basename.
func List(opts ListOptions) error {
	entries, err := store.Scan(opts.BuildType.ConfigDir())
	if err != nil {
		return err
	}

	for _, name := range store.SortedNames(entries) {
		if opts.Long {
			fmt.Fprintln(opts.Stdout, entries[name].Path)
		} else {
			fmt.Fprintln(opts.Stdout, name)
		}
	}
	return nil
}

// RestoreOptions controls the restore ("config") operation
type RestoreOptions struct {
	BuildType buildtype.BuildType

	// Name of the stored config to restore; defaults to "latest"
	Name string

	Stdout io.Writer
}

// Restore copies a stored config onto the build config file. A missing
// store or name fails without touching the build config.
func Restore(opts RestoreOptions) error {
	name := opts.Name
	if name == "" {
		name = store.LatestName
	}

	entries, err := store.Scan(opts.BuildType.ConfigDir())
	if err != nil {
		return err
	}

	entry, ok := entries[name]
	if !ok {
		return errors.Newf(errors.ErrConfigNotFound, "config file not found: %s", name)
	}

	return copyWithEcho(entry.Path, opts.BuildType.BuildConfigPath(), opts.Stdout)
}

// BackupOptions controls the backup operation
type BackupOptions struct {
	BuildType buildtype.BuildType

	// Name for the stored config; defaults to "config_<today>"
	Name string

	// CommitMessage used when the store is a git work tree
	CommitMessage string

	Stdout io.Writer
}

// BackupResult reports what a backup did
type BackupResult struct {
	// Name the config ended up stored under (possibly a -rN revision)
	Name string

	// Path of the stored file
	Path string

	// Copied is false when an existing revision already had identical
	// content
	Copied bool

	// Committed is true when the store changes were committed to git
	Committed bool
}

// Backup stores the current build config file under opts.Name,
// avoiding duplicate content and resolving name collisions with
// -r1, -r2, ... revision suffixes. After a copy the "latest" symlink
// is repointed and, if the store is a git work tree, the changes are
// committed.
func Backup(opts BackupOptions) (*BackupResult, error) {
	logger := logging.GetLogger("core.backup")

	name := opts.Name
	if name == "" {
		name = DefaultBackupName(time.Now())
	}

	buildConfig := opts.BuildType.BuildConfigPath()
	buildHash, err := fsutil.HashFile(buildConfig)
	if err != nil {
		return nil, err
	}

	configDir := opts.BuildType.ConfigDir()
	entries, err := store.Scan(configDir)
	switch {
	case errors.IsErrorCode(err, errors.ErrStoreMissing):
		if mkErr := os.MkdirAll(configDir, 0755); mkErr != nil {
			return nil, errors.Wrapf(mkErr, errors.ErrDirCreate, "failed to create config store directory %s", configDir)
		}

	case err != nil:
		return nil, err

	default:
		if _, taken := entries[name]; taken {
			// Probe base, base-r1, base-r2, ... until a free name or
			// an identical revision turns up.
			base := name
			for rev := 0; ; rev++ {
				candidate := base
				if rev > 0 {
					candidate = fmt.Sprintf("%s-r%d", base, rev)
				}

				entry, exists := entries[candidate]
				if !exists {
					name = candidate
					break
				}

				storedHash, err := fsutil.HashFile(entry.Path)
				if err != nil {
					return nil, err
				}
				if storedHash == buildHash {
					fmt.Fprintf(opts.Stdout, "File not changed: %s\n", candidate)
					return &BackupResult{Name: candidate, Path: entry.Path}, nil
				}
			}
		}
	}

	target := filepath.Join(configDir, name)
	if err := copyWithEcho(buildConfig, target, opts.Stdout); err != nil {
		return nil, err
	}

	link := filepath.Join(configDir, store.LatestName)
	if err := fsutil.ReplaceSymlink(name, link); err != nil {
		return nil, err
	}

	result := &BackupResult{Name: name, Path: target, Copied: true}

	if git.IsWorkTree(configDir) {
		message := opts.CommitMessage
		if message == "" {
			message = DefaultCommitMessage
		}
		if err := git.CommitFiles(configDir, []string{target, link}, message); err != nil {
			return nil, err
		}
		result.Committed = true
	}

	logger.Info().Str("name", name).Str("path", target).Bool("committed", result.Committed).Msg("Config backed up")
	return result, nil
}

// copyWithEcho copies src onto dst atomically, echoing the transfer
// the way the list-oriented CLI output expects.
func copyWithEcho(src, dst string, out io.Writer) error {
	fmt.Fprintf(out, "%s -> %s\n", src, dst)
	return fsutil.CopyFile(src, dst)
}
