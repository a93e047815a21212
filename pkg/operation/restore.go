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
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/state"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ⏪ restoreOperation implements restore
type restoreOperation struct {
	*BaseOperation
}

// 🏃 Execute restores every file in the lock file, or only Files when given.
// The pre-patch text comes from the reverse delta in the lock file; a file
// that drifted since it was patched falls back to its .bak copy.
func (op *restoreOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Bool("dry_run", op.DryRun).Msg("restoring files")

	if err := op.State.Load(ctx); err != nil {
		return errors.Errorf("loading state: %w", err)
	}

	var jobs []Job
	if len(op.Files) > 0 {
		for _, f := range op.Files {
			jobs = append(jobs, Job{Path: op.relPath(f)})
		}
	} else {
		for _, fs := range op.State.Files() {
			jobs = append(jobs, Job{Path: fs.Path, RuleSets: fs.RuleSets})
		}
	}

	if len(jobs) == 0 {
		op.Console.Info("nothing to restore")
		return nil
	}

	op.StatusMgr.StartOperation(ctx, len(jobs))
	defer op.StatusMgr.FinishOperation(ctx)

	if err := op.Runner.Each(ctx, jobs, op.restoreFile); err != nil {
		return err
	}

	if !op.DryRun {
		if err := op.State.Save(ctx); err != nil {
			return errors.Errorf("saving state: %w", err)
		}
	}

	return op.failed()
}

func (op *restoreOperation) restoreFile(ctx context.Context, job Job) error {
	defer op.StatusMgr.Advance(ctx)

	current, err := op.StatusMgr.ReadFile(ctx, job.Path)
	if err != nil {
		op.fail(ctx, job.Path, job.RuleSets, err)
		return nil
	}

	original, err := op.State.Original(job.Path, string(current))
	switch {
	case err == nil:
		if err := op.writeOriginal(ctx, job, string(current), original); err != nil {
			op.fail(ctx, job.Path, job.RuleSets, err)
		}
		return nil

	case errors.Is(err, state.ErrDrifted), errors.Is(err, state.ErrNotTracked):
		if err := op.restoreBackup(ctx, job, string(current), err); err != nil {
			op.fail(ctx, job.Path, job.RuleSets, err)
		}
		return nil

	default:
		op.fail(ctx, job.Path, job.RuleSets, err)
		return nil
	}
}

func (op *restoreOperation) writeOriginal(ctx context.Context, job Job, current, original string) error {
	if op.DryRun {
		op.reportRestore(ctx, job, status.StatusPending, current, original)
		return nil
	}

	if err := op.StatusMgr.WriteFileAtomic(ctx, job.Path, []byte(original)); err != nil {
		return errors.Errorf("writing original: %w", err)
	}

	// the backup is now redundant
	if has, err := op.StatusMgr.HasBackup(ctx, job.Path); err == nil && has {
		if err := op.StatusMgr.DeleteFile(ctx, job.Path+status.BackupSuffix); err != nil {
			return err
		}
	}

	op.State.Remove(job.Path)
	op.reportRestore(ctx, job, status.StatusRestored, current, original)
	return nil
}

func (op *restoreOperation) restoreBackup(ctx context.Context, job Job, current string, cause error) error {
	has, err := op.StatusMgr.HasBackup(ctx, job.Path)
	if err != nil {
		return err
	}
	if !has {
		return errors.Errorf("%w and no backup exists", cause)
	}

	zerolog.Ctx(ctx).Warn().Err(cause).Str("path", job.Path).Msg("restoring from backup")

	backup, err := op.StatusMgr.ReadFile(ctx, job.Path+status.BackupSuffix)
	if err != nil {
		return err
	}

	if op.DryRun {
		op.reportRestore(ctx, job, status.StatusPending, current, string(backup))
		return nil
	}

	if err := op.StatusMgr.RestoreFile(ctx, job.Path); err != nil {
		return err
	}

	op.State.Remove(job.Path)
	op.reportRestore(ctx, job, status.StatusRestored, current, string(backup))
	return nil
}

func (op *restoreOperation) reportRestore(ctx context.Context, job Job, s status.FileStatus, current, original string) {
	op.StatusMgr.TrackFile(ctx, job.Path, status.FileInfo{
		Status:   s,
		Size:     int64(len(original)),
		Checksum: status.Checksum([]byte(original)),
	})
	op.Console.LogFileOperation(ctx, log.FileOperation{
		Path:     job.Path,
		RuleSets: job.RuleSets,
		Status:   s,
	})
	if op.Diff {
		op.Console.Raw(text.Unified(job.Path, current, original, text.DefaultContext))
	}
}
