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
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/engine"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/state"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrChangesPending is returned by check when a run would change files
	ErrChangesPending = errors.Base("changes pending")

	// ErrFilesFailed is returned when at least one file could not be processed
	ErrFilesFailed = errors.Base("one or more files failed")
)

// 🎯 Operation is one patchrc command
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains configuration for operations
type Options struct {
	// Config supplies rule sets, targets and run options
	Config *config.Config

	// Dir is the directory targets are resolved against. Defaults to the
	// config's directory.
	Dir string

	// Files, when set, replaces the config targets. Each file gets RuleSets.
	Files []string
	// RuleSets are applied to Files, or narrow config targets to these sets
	RuleSets []string

	DryRun  bool // never write
	Diff    bool // print a unified diff for changed files
	Verbose bool // print every rule outcome

	// Jobs caps concurrent files when the config asks for async runs
	Jobs int

	// Console receives human readable output. Defaults to io.Discard.
	Console *log.Logger
	// StatusMgr and State are created from Dir when nil
	StatusMgr *status.Manager
	State     *state.State
}

// 📦 BaseOperation holds what every operation shares
type BaseOperation struct {
	Options
	Engine *engine.Engine
	Runner *OperationRunner

	failMu   sync.Mutex
	failures []error
}

// 🏭 NewBaseOperation fills in defaults for opts
func NewBaseOperation(ctx context.Context, opts Options) (*BaseOperation, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Dir == "" {
		opts.Dir = opts.Config.Dir()
	}
	if opts.Console == nil {
		opts.Console = log.New(io.Discard, zerolog.Disabled)
	}
	if opts.StatusMgr == nil {
		opts.StatusMgr = status.New(opts.Dir, zerolog.Ctx(ctx))
	}
	if opts.State == nil {
		opts.State = state.New(opts.StatusMgr, opts.Config.Options.LockFile)
	}

	return &BaseOperation{
		Options: opts,
		Engine:  engine.New(engine.Options{StrictAmbiguity: opts.Config.Options.StrictAmbiguity}),
		Runner:  NewRunner(zerolog.Ctx(ctx), opts.Config.Options.Async, opts.Jobs),
	}, nil
}

// 🩹 NewPatchOperation applies rule sets to their targets
func NewPatchOperation(ctx context.Context, opts Options) (Operation, error) {
	base, err := NewBaseOperation(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &patchOperation{BaseOperation: base}, nil
}

// 🔍 NewCheckOperation reports what applying would change without writing
func NewCheckOperation(ctx context.Context, opts Options) (Operation, error) {
	opts.DryRun = true
	base, err := NewBaseOperation(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &checkOperation{BaseOperation: base}, nil
}

// ⏪ NewRestoreOperation puts back the text from before patchrc touched it
func NewRestoreOperation(ctx context.Context, opts Options) (Operation, error) {
	base, err := NewBaseOperation(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &restoreOperation{BaseOperation: base}, nil
}

// fail records a per-file failure and keeps going with the other files
func (op *BaseOperation) fail(ctx context.Context, path string, rulesets []string, err error) {
	op.failMu.Lock()
	op.failures = append(op.failures, errors.Errorf("%s: %w", path, err))
	op.failMu.Unlock()

	op.StatusMgr.TrackFile(ctx, path, status.FileInfo{Status: status.StatusFailed, Error: err})
	op.Console.LogFileOperation(ctx, log.FileOperation{
		Path:     path,
		RuleSets: rulesets,
		Status:   status.StatusFailed,
		Err:      err,
	})
}

// failed joins every recorded failure under ErrFilesFailed
func (op *BaseOperation) failed() error {
	op.failMu.Lock()
	defer op.failMu.Unlock()

	if len(op.failures) == 0 {
		return nil
	}
	return errors.Errorf("%w: %w", ErrFilesFailed, errors.Join(op.failures...))
}

// relPath makes path relative to Dir when it lives inside it
func (op *BaseOperation) relPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	abs, err := filepath.Abs(op.Dir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(abs, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
