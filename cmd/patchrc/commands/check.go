package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check whether applying would change anything",
		Long: `Check does a dry run of apply and also compares the config with the one
recorded in the lock file. It exits with status 1 when a file would change
or the config changed since the last apply, which makes it usable in CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())
			console := log.FromContext(ctx)

			options, err := flags.options(opts, flags.defaultFiles(opts, args))
			if err != nil {
				return err
			}

			console.Header("checking files")

			err = execute(ctx, operation.NewCheckOperation, options)
			switch {
			case err == nil:
				console.Success("everything is up to date")
				return nil
			case errors.Is(err, operation.ErrChangesPending):
				console.Warning(err.Error())
				return err
			default:
				return errors.Errorf("checking files: %w", err)
			}
		},
	}

	flags.addRuleSetFlag(cmd)
	flags.addOutputFlags(cmd)

	return cmd
}
