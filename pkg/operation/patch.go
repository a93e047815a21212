// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/engine"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🩹 patchOperation implements apply
type patchOperation struct {
	*BaseOperation
}

// 🏃 Execute runs the patch operation
func (op *patchOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Bool("dry_run", op.DryRun).Msg("applying rule sets")

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
		if err := op.Runner.Each(ctx, g.Jobs, op.patchFile); err != nil {
			op.Console.EndTarget(ctx)
			return err
		}
		op.Console.EndTarget(ctx)
	}

	if !op.DryRun && op.StatusMgr.Count(status.StatusPatched) > 0 {
		op.State.SetConfigHash(op.Config.Hash())
		if err := op.State.Save(ctx); err != nil {
			return errors.Errorf("saving state: %w", err)
		}
	}

	return op.failed()
}

// 📄 patchFile applies a job's rule sets to one file. Rule failures are
// recorded against the file and do not stop other files.
func (op *BaseOperation) patchFile(ctx context.Context, job Job) error {
	defer op.StatusMgr.Advance(ctx)

	result, err := op.runRules(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		op.fail(ctx, job.Path, job.RuleSets, err)
		return nil
	}

	info := status.FileInfo{
		Status:   status.StatusUnchanged,
		Size:     int64(len(result.ModifiedContent)),
		Checksum: status.Checksum([]byte(result.ModifiedContent)),
		Rules:    result.Fired(),
	}

	if result.WasModified {
		zerolog.Ctx(ctx).Debug().
			Str("path", job.Path).
			Str("changes", text.Summary(result.OriginalContent, result.ModifiedContent)).
			Strs("fired", info.Rules).
			Msg("file modified")

		info.Status = status.StatusPending
		if !op.DryRun {
			info.Status = status.StatusPatched
			if err := op.State.Record(ctx, job.Path, job.RuleSets, result.OriginalContent, result.ModifiedContent, result.Fired()); err != nil {
				op.fail(ctx, job.Path, job.RuleSets, err)
				return nil
			}
		}
	}

	op.report(ctx, job, info, result)
	return nil
}

// runRules compiles the job's rule sets and runs them through the engine
func (op *BaseOperation) runRules(ctx context.Context, job Job) (*engine.Result, error) {
	rules, err := op.Config.Rules(job.RuleSets...)
	if err != nil {
		return nil, err
	}

	backup, err := op.needsBackup(ctx, job.Path)
	if err != nil {
		return nil, err
	}

	f := op.StatusMgr.File(job.Path, backup)
	return op.Engine.Patch(ctx, f, f, rules, op.DryRun)
}

// needsBackup reports whether writing path should copy it to .bak first.
// An existing backup of a tracked file holds the text from before its first
// patch and is kept.
func (op *BaseOperation) needsBackup(ctx context.Context, path string) (bool, error) {
	if !op.Config.Options.Backup {
		return false, nil
	}
	if _, tracked := op.State.Get(path); !tracked {
		return true, nil
	}
	has, err := op.StatusMgr.HasBackup(ctx, path)
	if err != nil {
		return false, err
	}
	return !has, nil
}

func (op *BaseOperation) report(ctx context.Context, job Job, info status.FileInfo, result *engine.Result) {
	op.StatusMgr.TrackFile(ctx, job.Path, info)
	op.Console.LogFileOperation(ctx, log.FileOperation{
		Path:     job.Path,
		RuleSets: job.RuleSets,
		Status:   info.Status,
		Fired:    len(info.Rules),
		Skipped:  result.Count(engine.StatusSkipped),
	})

	if op.Verbose {
		for _, o := range result.Outcomes {
			op.Console.LogRuleOperation(ctx, log.RuleOperation{
				Rule:       o.Rule,
				Strategy:   string(o.Strategy),
				Status:     string(o.Status),
				Candidates: o.Candidates,
			})
		}
	}

	if op.Diff && result.WasModified {
		op.Console.Raw(text.Unified(job.Path, result.OriginalContent, result.ModifiedContent, text.DefaultContext))
	}
}
