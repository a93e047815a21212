package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "apply [file...]",
		Short: "Apply rule sets to files",
		Long: `Apply runs rule sets against files and writes the result.

Without file arguments the targets in the config decide which files get
which rule sets; --ruleset narrows them to the named sets. With file
arguments, every --ruleset is applied to each file in order.

A rule that must match and does not fails its file, which is left
untouched; the other files are still patched.`,
		Example: `  patchrc apply
  patchrc apply --dry-run --diff
  patchrc apply -r fix-did-update lib/ui/organisms/editors/generic_block_editor.dart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "apply").Logger().WithContext(cmd.Context())

			options, err := flags.options(opts, flags.defaultFiles(opts, args))
			if err != nil {
				return err
			}

			msg := "applying rule sets"
			if flags.dryRun {
				msg += " (dry run)"
			}
			log.FromContext(ctx).Header(msg)

			if err := execute(ctx, operation.NewPatchOperation, options); err != nil {
				return errors.Errorf("applying rule sets: %w", err)
			}
			return nil
		},
	}

	flags.addRuleSetFlag(cmd)
	flags.addOutputFlags(cmd)
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "report what would change without writing")

	return cmd
}
