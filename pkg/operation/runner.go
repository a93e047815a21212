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
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 OperationRunner executes operations and fans per-file work out
type OperationRunner struct {
	logger *zerolog.Logger
	async  bool
	jobs   int
}

// 🏗️ NewRunner creates a new runner. jobs <= 0 means one per CPU.
func NewRunner(logger *zerolog.Logger, async bool, jobs int) *OperationRunner {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &OperationRunner{
		logger: logger,
		async:  async,
		jobs:   jobs,
	}
}

// 🏃 Run executes an operation
func (r *OperationRunner) Run(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("operation cancelled: %w", err)
	}
	return op.Execute(ctx)
}

// 🔄 Each calls fn for every job. Each buffer is owned by exactly one call,
// so async runs share nothing but the status manager and state, which are
// safe for concurrent use. An error returned by fn stops the remaining jobs,
// so fn records per-file failures itself and returns only errors that should
// end the run, such as a cancelled context.
func (r *OperationRunner) Each(ctx context.Context, jobs []Job, fn func(ctx context.Context, job Job) error) error {
	if !r.async || len(jobs) < 2 {
		return r.eachSync(ctx, jobs, fn)
	}
	return r.eachAsync(ctx, jobs, fn)
}

func (r *OperationRunner) eachSync(ctx context.Context, jobs []Job, fn func(ctx context.Context, job Job) error) error {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("operation cancelled: %w", err)
		}
		if err := fn(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

// ⚡ eachAsync runs jobs on an errgroup bounded by r.jobs
func (r *OperationRunner) eachAsync(ctx context.Context, jobs []Job, fn func(ctx context.Context, job Job) error) error {
	r.logger.Debug().Int("files", len(jobs)).Int("jobs", r.jobs).Msg("running files concurrently")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs, len(jobs)))

	for _, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return errors.Errorf("operation cancelled: %w", gctx.Err())
			default:
			}
			return fn(gctx, job)
		})
	}

	return g.Wait()
}
