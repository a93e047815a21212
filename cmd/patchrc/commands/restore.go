package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRestoreCmd creates a new restore command
func NewRestoreCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "restore [file...]",
		Short: "Undo patches recorded in the lock file",
		Long: `Restore puts patched files back the way they were before the first apply.
The original text is rebuilt from the lock file. A file edited since it
was patched can only be restored from its .bak copy (options.backup).

Without file arguments every file in the lock file is restored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "restore").Logger().WithContext(cmd.Context())

			options, err := flags.options(opts, args)
			if err != nil {
				return err
			}

			log.FromContext(ctx).Header("restoring files")

			if err := execute(ctx, operation.NewRestoreOperation, options); err != nil {
				return errors.Errorf("restoring files: %w", err)
			}
			return nil
		},
	}

	flags.addOutputFlags(cmd)
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "report what would be restored without writing")

	return cmd
}
