package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/catalog"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// runFlags are shared by apply, check and restore
type runFlags struct {
	rulesets []string
	dryRun   bool
	diff     bool
	verbose  bool
}

func (f *runFlags) addRuleSetFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.rulesets, "ruleset", "r", nil, "rule set to apply, in order (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("ruleset", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

func (f *runFlags) addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.diff, "diff", false, "print a unified diff for every changed file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print the outcome of every rule")
}

// options builds operation options from the root options, flags and file
// arguments. Files are resolved against the working directory.
func (f *runFlags) options(o *opts.RootOpts, args []string) (operation.Options, error) {
	files := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return operation.Options{}, errors.Errorf("resolving %s: %w", arg, err)
		}
		files = append(files, abs)
	}

	return operation.Options{
		Config:   o.Config,
		Files:    files,
		RuleSets: f.rulesets,
		DryRun:   f.dryRun,
		Diff:     f.diff,
		Verbose:  f.verbose,
		Jobs:     o.Jobs,
		Console:  o.Console,
	}, nil
}

// defaultFiles points rule sets at the file the built-in catalog was written
// for when nothing else says which files to patch
func (f *runFlags) defaultFiles(o *opts.RootOpts, args []string) []string {
	if len(args) > 0 || len(f.rulesets) == 0 || len(o.Config.Targets) > 0 {
		return args
	}
	return []string{filepath.Join(o.Config.Dir(), filepath.FromSlash(catalog.DefaultTarget))}
}

// execute runs the operation and prints the summary table
func execute(ctx context.Context, newOp func(context.Context, operation.Options) (operation.Operation, error), options operation.Options) error {
	console := log.FromContext(ctx)

	op, err := newOp(ctx, options)
	if err != nil {
		return err
	}

	runErr := op.Execute(ctx)
	if err := console.Summary(); err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}
	return runErr
}
