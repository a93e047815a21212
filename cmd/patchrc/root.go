package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/catalog"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debugLogs  bool
	jobs       int
)

// newRootCmd builds the command tree. Console output goes to out.
func newRootCmd(out io.Writer) *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply ordered rule sets of text patches to source files",
		Long: `patchrc rewrites source files with named rule sets: ordered lists of
find-and-replace rules located by literal text, regular expressions,
balanced brace regions, lines or file tails.

Rule sets and the files they apply to come from a .patchrc.{hcl,yaml,json,toml}
config. Patched files are recorded in a lock file so they can be checked
and restored later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			ctx := zerolog.DefaultContextLogger.WithContext(cmd.Context())

			if err := initRootOpts(ctx, rootOpts, out); err != nil {
				return err
			}
			cmd.SetContext(log.NewContext(ctx, rootOpts.Console))
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewCheckCmd(rootOpts),
		commands.NewRestoreCmd(rootOpts),
		commands.NewRulesCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}

// initRootOpts loads the config and the console logger into o
func initRootOpts(ctx context.Context, o *opts.RootOpts, out io.Writer) error {
	level := zerolog.WarnLevel
	if debugLogs {
		level = zerolog.DebugLevel
	}
	o.Console = log.New(out, level)
	o.Jobs = jobs

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	o.Config = cfg
	return nil
}

// loadConfig loads --config, or the config found in the working directory.
// With neither, only the built-in rule sets are available.
func loadConfig(ctx context.Context) (*config.Config, error) {
	builtins, err := catalog.RuleSets()
	if err != nil {
		return nil, errors.Errorf("loading built-in rule sets: %w", err)
	}

	path := configFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		path, err = config.Discover(wd)
		if errors.Is(err, config.ErrConfigNotFound) {
			zerolog.Ctx(ctx).Debug().Str("dir", wd).Msg("no config found, using built-in rule sets")
			return config.Default(builtins), nil
		}
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(ctx, path, builtins)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: discovered in the working directory)")
	cmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "files to patch concurrently when options.async is set (default: one per CPU)")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugLogs {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
}
