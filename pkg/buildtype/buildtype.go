// Package buildtype identifies which build system a source tree uses
// and where its configuration lives.
//
// The known variants (linux, buildroot, buildroot-busybox, generic)
// form a closed set, probed in a fixed priority order during
// auto-detection. Each variant knows its config-store subdirectory key
// and the name of the build config file inside the build directory.
package buildtype

import (
	"path/filepath"
	"strings"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
)

// BuildInfo describes one build/config-store pair. All paths are
// absolute and set once at startup.
type BuildInfo struct {
	// SrcDir is the source directory
	SrcDir string

	// BuildDir is the build output directory (equal to SrcDir for
	// in-tree builds)
	BuildDir string

	// ConfigRoot is the root of the config store
	ConfigRoot string
}

// BuildType is the capability shared by all build system variants.
type BuildType interface {
	// Name returns the canonical variant name
	Name() string

	// ConfigKey returns the config-store subdirectory key
	ConfigKey() string

	// ConfigDir returns the config-store subdirectory path
	ConfigDir() string

	// BuildConfigPath returns the path of the live build config file
	BuildConfigPath() string

	// Detect reports whether this variant applies to the source
	// directory. With guessKey set (auto-detection), the generic
	// variant derives its config key from the build directory name.
	Detect(guessKey bool) (bool, error)

	// PrepareBuild initializes the build directory where the variant
	// supports out-of-tree builds; otherwise it is a no-op.
	PrepareBuild() error
}

// Options carries the inputs shared by all variants
type Options struct {
	Info *BuildInfo

	// MakeCommand is the build tool used for out-of-tree
	// initialization (usually "make")
	MakeCommand string
}

// factory describes one registered variant
type factory struct {
	name    string
	aliases []string
	create  func(opts Options) BuildType
}

// Detection priority order. buildroot-busybox must come after
// buildroot: both match the same source tree and plain buildroot wins.
var registry = []factory{
	{name: "linux", create: func(o Options) BuildType { return newLinux(o) }},
	{name: "buildroot", aliases: []string{"br"}, create: func(o Options) BuildType { return newBuildroot(o) }},
	{name: "buildroot-busybox", aliases: []string{"br-busybox", "brb"}, create: func(o Options) BuildType { return newBuildrootBusybox(o) }},
	{name: "generic", create: func(o Options) BuildType { return newGeneric(o, "") }},
}

// Names returns the canonical variant names in detection order
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, f := range registry {
		names = append(names, f.name)
	}
	return names
}

// lookup resolves a canonical name or alias to its factory
func lookup(name string) (factory, bool) {
	for _, f := range registry {
		if f.name == name {
			return f, true
		}
		for _, alias := range f.aliases {
			if alias == name {
				return f, true
			}
		}
	}
	return factory{}, false
}

// Select resolves the build type for opts.Info.
//
// With an empty typeName or "auto", each variant is probed in priority
// order with key guessing enabled and the first match wins. A known
// name or alias selects that variant directly; a detection mismatch is
// an error. Any other string selects the generic variant with that
// string as its config key.
func Select(opts Options, typeName string) (BuildType, error) {
	if typeName != "" {
		typeName = normalizeTypeName(typeName)
	}

	if typeName == "" || typeName == "auto" {
		for _, f := range registry {
			bt := f.create(opts)
			ok, err := bt.Detect(true)
			if err != nil {
				return nil, err
			}
			if ok {
				return bt, nil
			}
		}
		return nil, errors.Newf(errors.ErrTypeNotFound, "no build type found for %s", opts.Info.SrcDir)
	}

	if f, ok := lookup(typeName); ok {
		bt := f.create(opts)
		ok, err := bt.Detect(false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Newf(errors.ErrTypeMismatch, "build type mismatch: %s", bt.Name())
		}
		return bt, nil
	}

	bt := newGeneric(opts, typeName)
	ok, err := bt.Detect(true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf(errors.ErrTypeMismatch, "build type mismatch: %s", bt.Name())
	}
	return bt, nil
}

// normalizeTypeName lowercases and strips the user-supplied type name
// so that it is safe to use as a directory component.
func normalizeTypeName(name string) string {
	name = strings.Trim(strings.ToLower(name), "/")
	if name == "" {
		return name
	}
	return filepath.Clean(name)
}
