package buildtype

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
	"github.com/kbuild-tools/kconfig-select/pkg/logging"
)

// DefaultConfigFilename is the build config file name used by all
// variants except buildroot-busybox.
const DefaultConfigFilename = ".config"

// BusyboxConfigFilename is the build config file managed by the
// buildroot-busybox variant.
const BusyboxConfigFilename = "busybox.config"

// First line of a Buildroot top-level Makefile. Detection matches this
// literal exactly.
const buildrootMakefileHeader = "# Makefile for buildroot"

// base carries the state shared by all variants
type base struct {
	info     *BuildInfo
	makeCmd  string
	name     string
	filename string

	// key is the config-store subdirectory key. Fixed to the variant
	// name except for generic, which may guess it during detection.
	key string
}

func newBase(opts Options, name, filename string) base {
	return base{
		info:     opts.Info,
		makeCmd:  opts.MakeCommand,
		name:     name,
		filename: filename,
		key:      name,
	}
}

func (b *base) Name() string      { return b.name }
func (b *base) ConfigKey() string { return b.key }

func (b *base) ConfigDir() string {
	if b.key == "" {
		return b.info.ConfigRoot
	}
	return filepath.Join(b.info.ConfigRoot, b.key)
}

func (b *base) BuildConfigPath() string {
	return filepath.Join(b.info.BuildDir, b.filename)
}

// prepareOutOfTree creates the build directory if needed and runs
// "<make> -C <src> O=<build> defconfig" when the directory is new or
// has no build config yet. A non-zero make exit is fatal.
func (b *base) prepareOutOfTree() error {
	logger := logging.GetLogger("buildtype")

	shouldInit := false
	if fi, err := os.Stat(b.info.BuildDir); err != nil || !fi.IsDir() {
		if err := os.MkdirAll(b.info.BuildDir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create build directory %s", b.info.BuildDir)
		}
		shouldInit = true
	} else if _, err := os.Stat(b.BuildConfigPath()); err != nil {
		shouldInit = true
	}

	if !shouldInit {
		return nil
	}

	makeCmd := b.makeCmd
	if makeCmd == "" {
		makeCmd = "make"
	}

	args := []string{"-C", b.info.SrcDir, "O=" + b.info.BuildDir, "defconfig"}
	logger.Info().
		Str("command", makeCmd).
		Strs("args", args).
		Msg("Initializing out-of-tree build directory")

	cmd := exec.Command(makeCmd, args...)
	cmd.Dir = b.info.SrcDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrBuildPrepare, "defconfig failed in %s", b.info.SrcDir)
	}

	return nil
}

// linuxType must be selected explicitly: a kernel tree looks like too
// many other things to probe for it safely.
type linuxType struct {
	base
}

func newLinux(opts Options) *linuxType {
	return &linuxType{base: newBase(opts, "linux", DefaultConfigFilename)}
}

func (t *linuxType) Detect(guessKey bool) (bool, error) {
	return !guessKey, nil
}

func (t *linuxType) PrepareBuild() error {
	return t.prepareOutOfTree()
}

// buildrootType detects a Buildroot tree by the first line of its
// top-level Makefile.
type buildrootType struct {
	base
}

func newBuildroot(opts Options) *buildrootType {
	return &buildrootType{base: newBase(opts, "buildroot", DefaultConfigFilename)}
}

func newBuildrootBusybox(opts Options) *buildrootType {
	bt := &buildrootType{base: newBase(opts, "buildroot-busybox", BusyboxConfigFilename)}
	return bt
}

func (t *buildrootType) Detect(guessKey bool) (bool, error) {
	first, err := readFirstLine(filepath.Join(t.info.SrcDir, "Makefile"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read Makefile in %s", t.info.SrcDir)
	}
	return first == buildrootMakefileHeader, nil
}

func (t *buildrootType) PrepareBuild() error {
	return t.prepareOutOfTree()
}

// genericType matches anything. During auto-detection it guesses its
// config key from the build directory name; an explicitly supplied
// key is kept as-is.
type genericType struct {
	base
	explicitKey bool
}

func newGeneric(opts Options, key string) *genericType {
	t := &genericType{base: newBase(opts, "generic", DefaultConfigFilename)}
	if key != "" {
		t.key = key
		t.explicitKey = true
	}
	return t
}

func (t *genericType) Detect(guessKey bool) (bool, error) {
	if guessKey && !t.explicitKey {
		t.key = GuessConfigKey(t.info.BuildDir)
	}
	return true, nil
}

func (t *genericType) PrepareBuild() error {
	return nil
}

// GuessConfigKey derives a config-store key from a build directory
// path: the directory basename with surrounding dots stripped,
// truncated at the first remaining dot. "build.x86_64" becomes
// "build", ".config-tree" becomes "config-tree".
func GuessConfigKey(buildDir string) string {
	name := strings.Trim(filepath.Base(buildDir), ".")
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

// readFirstLine returns the first line of a file with surrounding
// whitespace trimmed.
func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", nil
}
