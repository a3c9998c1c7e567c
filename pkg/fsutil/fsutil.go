// Package fsutil provides the file-level primitives for the config
// store: content hashing, atomic copies and atomic symlink updates.
package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/google/renameio/v2"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
)

// HashFile computes the SHA-256 digest of a file's content and returns
// it as a hex string.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to hash %s", path)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// CopyFile copies src to dst atomically: the content is written to a
// temporary file in dst's directory and renamed over dst. On any
// failure the temporary file is removed and dst is left untouched.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", src)
	}
	defer func() { _ = in.Close() }()

	// renameio handles temp file creation, atomic rename and cleanup
	// of the temp file when the pending file is not committed
	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0644))
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create pending file for %s", dst)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := io.Copy(pending, in); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", dst)
	}

	return nil
}

// ReplaceSymlink points linkPath at target, replacing any existing
// link. The new link is created under a temporary name and renamed
// into place, so linkPath never goes missing in between.
func ReplaceSymlink(target, linkPath string) error {
	tmpLink := linkPath + ".tmp"

	// A stale temp link from an interrupted run would make Symlink fail
	if err := os.Remove(tmpLink); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to remove stale link %s", tmpLink)
	}

	if err := os.Symlink(target, tmpLink); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s", tmpLink)
	}

	if err := os.Rename(tmpLink, linkPath); err != nil {
		_ = os.Remove(tmpLink)
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to rename symlink to %s", linkPath)
	}

	return nil
}
