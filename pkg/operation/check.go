package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔍 checkOperation implements check: a dry run that also looks at the lock
// file for config and file drift
type checkOperation struct {
	*BaseOperation
}

// Execute returns ErrChangesPending when applying would change a file or the
// config changed since the lock file was written
func (op *checkOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("checking status")

	if err := op.State.Load(ctx); err != nil {
		return errors.Errorf("loading state: %w", err)
	}

	groups, err := op.Plan(ctx)
	if err != nil {
		return errors.Errorf("planning: %w", err)
	}

	jobs := Jobs(groups)
	op.StatusMgr.StartOperation(ctx, len(jobs))
	defer op.StatusMgr.FinishOperation(ctx)

	for _, g := range groups {
		op.Console.StartTarget(ctx, log.TargetOperation{Pattern: g.Pattern, RuleSets: g.RuleSets, Files: len(g.Jobs)})
		if err := op.Runner.Each(ctx, g.Jobs, op.checkFile); err != nil {
			op.Console.EndTarget(ctx)
			return err
		}
		op.Console.EndTarget(ctx)
	}

	if err := op.failed(); err != nil {
		return err
	}

	configChanged := op.State.ConfigChanged(op.Config.Hash())
	if configChanged {
		logger.Debug().
			Str("state_hash", op.State.ConfigHash()).
			Str("config_hash", op.Config.Hash()).
			Msg("config has changed")
		op.Console.Warning("config changed since the lock file was written")
	}

	pending := op.StatusMgr.Count(status.StatusPending)
	if pending > 0 || configChanged {
		return errors.Errorf("%w: %d file(s) would change", ErrChangesPending, pending)
	}

	logger.Debug().Msg("no changes needed")
	return nil
}

func (op *checkOperation) checkFile(ctx context.Context, job Job) error {
	if err := op.patchFile(ctx, job); err != nil {
		return err
	}

	content, err := op.StatusMgr.ReadFile(ctx, job.Path)
	if err != nil {
		// already reported by patchFile
		return nil
	}
	if op.State.Drifted(job.Path, string(content)) {
		op.Console.Warningf("%s changed since it was patched; restore will need its backup", job.Path)
	}
	return nil
}
