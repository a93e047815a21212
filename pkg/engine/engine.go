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

// Package engine applies ordered rule sequences to a text buffer.
//
// Rules run one after another. Each rule resolves its locator against the
// text as left by the rules before it, so later rules see earlier edits.
// A run either applies every rule or leaves the buffer untouched.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/buffer"
	"github.com/walteh/patchrc/pkg/match"
	"github.com/walteh/patchrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrLocatorNotFound is returned when a required rule's locator is absent
	ErrLocatorNotFound = match.ErrNotFound

	// ErrAmbiguousMatch is returned when a unique rule matches more than once
	ErrAmbiguousMatch = errors.Base("ambiguous match")
)

// 🚨 RuleError ties a failure to the rule that caused it
type RuleError struct {
	Rule     string
	Index    int
	Strategy match.Kind
	Err      error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule #%d %q (%s): %v", e.Index, e.Rule, e.Strategy, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// 📊 Status is what happened to a single rule
type Status string

const (
	StatusApplied   Status = "applied"
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
)

// Outcome records one rule's effect
type Outcome struct {
	Rule       string
	Strategy   match.Kind
	Status     Status
	Span       match.Span
	Candidates int
	// Delta is the change in text length caused by the rule
	Delta int
}

// 📝 Result holds the outcome of an Apply run
type Result struct {
	OriginalContent string
	ModifiedContent string
	WasModified     bool
	Outcomes        []Outcome
}

// Count returns how many rules ended with the given status
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Fired returns the names of rules that changed the text
func (r *Result) Fired() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == StatusApplied {
			names = append(names, o.Rule)
		}
	}
	return names
}

// 🔧 Options configures an Engine
type Options struct {
	// StrictAmbiguity turns every multi candidate match into an error
	StrictAmbiguity bool
}

// ⚙️ Engine applies rules to buffers
type Engine struct {
	opts Options
}

// 🏭 New creates an engine
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Apply runs rules in order against buf. On error buf is not modified.
func (e *Engine) Apply(ctx context.Context, buf *buffer.Buffer, rules []rule.Rule) (*Result, error) {
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, &RuleError{Rule: r.Name, Index: i, Strategy: r.Strategy(), Err: err}
		}
	}

	work := buf.Clone()
	result := &Result{
		OriginalContent: buf.Text(),
		Outcomes:        make([]Outcome, 0, len(rules)),
	}

	for i, r := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rule %q: %w", r.Name, err)
		}

		outcome, err := e.applyRule(ctx, work, r)
		if err != nil {
			return nil, &RuleError{Rule: r.Name, Index: i, Strategy: r.Strategy(), Err: err}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.ModifiedContent = work.Text()
	result.WasModified = result.ModifiedContent != result.OriginalContent
	if result.WasModified {
		buf.Reset(result.ModifiedContent)
	}
	return result, nil
}

func (e *Engine) applyRule(ctx context.Context, work *buffer.Buffer, r rule.Rule) (Outcome, error) {
	logger := zerolog.Ctx(ctx).With().Str("rule", r.Name).Str("strategy", string(r.Strategy())).Logger()
	outcome := Outcome{Rule: r.Name, Strategy: r.Strategy()}

	m, err := r.Locator.Find(work.Text())
	if err != nil {
		if errors.Is(err, match.ErrNotFound) {
			if r.Required {
				return outcome, errors.Errorf("%w: %s", ErrLocatorNotFound, r.Locator.Describe())
			}
			logger.Debug().Str("locator", r.Locator.Describe()).Msg("locator absent, skipping")
			outcome.Status = StatusSkipped
			return outcome, nil
		}
		return outcome, errors.Errorf("resolving %s: %w", r.Locator.Describe(), err)
	}

	outcome.Span = m.Span
	outcome.Candidates = m.Candidates

	if m.Candidates > 1 {
		if r.Unique || e.opts.StrictAmbiguity {
			return outcome, errors.Errorf("%w: %d candidates for %s", ErrAmbiguousMatch, m.Candidates, r.Locator.Describe())
		}
		logger.Warn().Int("candidates", m.Candidates).Str("span", m.Span.String()).Msg("locator matched more than once, using the first")
	}

	replacement, err := r.Replacement.Replace(m)
	if err != nil {
		return outcome, errors.Errorf("producing replacement: %w", err)
	}

	if replacement == m.Text {
		logger.Debug().Msg("replacement equals matched text")
		outcome.Status = StatusUnchanged
		return outcome, nil
	}

	if err := work.Replace(m.Start, m.End, replacement); err != nil {
		return outcome, errors.Errorf("splicing %s: %w", m.Span, err)
	}

	outcome.Status = StatusApplied
	outcome.Delta = len(replacement) - m.Len()
	logger.Debug().Str("span", m.Span.String()).Int("delta", outcome.Delta).Msg("rule applied")
	return outcome, nil
}

// Patch loads src, applies rules and writes the result to sink. The sink is
// only written when the text changed and dryRun is false.
func (e *Engine) Patch(ctx context.Context, src buffer.Source, sink buffer.Sink, rules []rule.Rule, dryRun bool) (*Result, error) {
	buf, err := buffer.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	result, err := e.Apply(ctx, buf, rules)
	if err != nil {
		return nil, err
	}

	if !result.WasModified || dryRun {
		return result, nil
	}

	if err := buf.Save(ctx, sink); err != nil {
		return nil, err
	}
	return result, nil
}
