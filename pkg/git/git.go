// Package git shells out to git for the config store's optional
// version control. Only exit status matters; git remains an opaque
// external tool.
package git

import (
	"os/exec"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
	"github.com/kbuild-tools/kconfig-select/pkg/logging"
)

// IsWorkTree reports whether dir is inside a git work tree, judged by
// the exit status of "git rev-parse --show-toplevel". A missing git
// binary counts as "no".
func IsWorkTree(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// CommitFiles stages the given paths and commits them with message.
// Any git failure is returned as a fatal error; there is no retry and
// no rollback.
func CommitFiles(dir string, paths []string, message string) error {
	logger := logging.GetLogger("git")
	logger.Debug().Str("dir", dir).Strs("paths", paths).Msg("Committing store changes")

	addArgs := append([]string{"add"}, paths...)
	add := exec.Command("git", addArgs...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return errors.Wrapf(err, errors.ErrGitRun, "git add failed: %s", string(out))
	}

	commitArgs := append([]string{"commit", "-m", message}, paths...)
	commit := exec.Command("git", commitArgs...)
	commit.Dir = dir
	if out, err := commit.CombinedOutput(); err != nil {
		return errors.Wrapf(err, errors.ErrGitRun, "git commit failed: %s", string(out))
	}

	return nil
}
