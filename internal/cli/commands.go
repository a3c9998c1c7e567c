// Package cli wires the cobra command tree for kconfig-select.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbuild-tools/kconfig-select/internal/version"
	"github.com/kbuild-tools/kconfig-select/pkg/buildtype"
	"github.com/kbuild-tools/kconfig-select/pkg/config"
	"github.com/kbuild-tools/kconfig-select/pkg/core"
	"github.com/kbuild-tools/kconfig-select/pkg/errors"
	"github.com/kbuild-tools/kconfig-select/pkg/logging"
)

// flags shared by all subcommands
type globalFlags struct {
	srcDir    string
	buildDir  string
	configDir string
	typeName  string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "kconfig-select",
		Short: "Manage Kconfig-style .config files across build trees",
		Long: `kconfig-select copies saved configurations from a central store into a
build directory and backs the build directory's current configuration
up into the store, with automatic -rN revisions on name collisions.
Changed store files are committed automatically when the store is part
of a git repository.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		// Bare invocation behaves as "config" with no name
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, flags, "")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&flags.srcDir, "src", "S", "", "path to the sources directory (default: <cwd>)")
	rootCmd.PersistentFlags().StringVarP(&flags.buildDir, "build", "O", "", "path to the build directory (default: <srcdir>)")
	rootCmd.PersistentFlags().StringVarP(&flags.configDir, "config", "C", "", "path to the config root directory (default: ~/git/kconfig-files)")
	rootCmd.PersistentFlags().StringVarP(&flags.typeName, "type", "t", "", "sources type: "+typeNamesHelp()+" or auto")

	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newBackupCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func typeNamesHelp() string {
	return strings.Join(buildtype.Names(), "|")
}

// resolve loads the configuration and detects the build type from the
// global flags. Flag values win over config file and environment.
func resolve(flags *globalFlags) (buildtype.BuildType, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	srcDir := flags.srcDir
	if srcDir == "" {
		srcDir, err = os.Getwd()
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
		}
	}
	srcDir, err = filepath.Abs(srcDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid source directory %s", flags.srcDir)
	}

	buildDir := flags.buildDir
	if buildDir == "" {
		buildDir = srcDir
	}
	buildDir, err = filepath.Abs(buildDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid build directory %s", flags.buildDir)
	}

	configRoot := flags.configDir
	if configRoot == "" {
		configRoot = cfg.ConfigRoot
	}
	configRoot, err = filepath.Abs(configRoot)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid config root %s", flags.configDir)
	}

	typeName := flags.typeName
	if typeName == "" {
		typeName = cfg.DefaultType
	}

	info := &buildtype.BuildInfo{
		SrcDir:     srcDir,
		BuildDir:   buildDir,
		ConfigRoot: configRoot,
	}

	bt, err := buildtype.Select(buildtype.Options{Info: info, MakeCommand: cfg.MakeCommand}, typeName)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("buildType", bt.Name()).
		Str("configKey", bt.ConfigKey()).
		Str("srcDir", srcDir).
		Str("buildDir", buildDir).
		Msg("Build type resolved")

	return bt, cfg, nil
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List available config files for this build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bt, _, err := resolve(flags)
			if err != nil {
				return err
			}
			return core.List(core.ListOptions{
				BuildType: bt,
				Long:      long,
				Stdout:    cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "enable long output format")
	return cmd
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "config [name]",
		Aliases: []string{"co"},
		Short:   "Copy a config from the config store to the build directory",
		Long: `Copy the named config file from the config store onto the build
directory's config file. The name defaults to "latest".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runRestore(cmd, flags, name)
		},
	}
}

// runRestore implements the config command and the bare default
// action: prepare the build directory, then copy the stored config in.
func runRestore(cmd *cobra.Command, flags *globalFlags, name string) error {
	bt, _, err := resolve(flags)
	if err != nil {
		return err
	}

	if err := bt.PrepareBuild(); err != nil {
		return err
	}

	return core.Restore(core.RestoreOptions{
		BuildType: bt,
		Name:      name,
		Stdout:    cmd.OutOrStdout(),
	})
}

func newBackupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "backup [name]",
		Aliases: []string{"ci"},
		Short:   "Copy the build directory's config into the config store",
		Long: `Store the build directory's current config file under the given name,
defaulting to "config_<date>". On a name collision with different
content an unused -rN revision suffix is chosen; identical content is
not stored twice. The "latest" symlink is updated and, if the store is
a git work tree, the changes are committed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bt, cfg, err := resolve(flags)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			_, err = core.Backup(core.BackupOptions{
				BuildType:     bt,
				Name:          name,
				CommitMessage: cfg.CommitMessage,
				Stdout:        cmd.OutOrStdout(),
			})
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kconfig-select version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}
