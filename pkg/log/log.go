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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	ruleIndent  = 8  // spaces to indent rule entries
	nameWidth   = 35 // Base width for filename
	setWidth    = 24 // Width for rule set names
	statusWidth = 15 // Width for status text
)

// 🎯 FileOperation is what a run did to one file
type FileOperation struct {
	Path     string            // File path
	RuleSets []string          // Rule sets applied to the file
	Status   status.FileStatus // Outcome
	Fired    int               // Rules that changed the text
	Skipped  int               // Rules whose locator was absent
	Err      error             // Failure, if any
}

// 🔧 RuleOperation is one rule's outcome inside a file
type RuleOperation struct {
	Rule       string
	Strategy   string
	Status     string // applied, skipped or unchanged
	Candidates int
}

// 📦 TargetOperation is one configured target being processed
type TargetOperation struct {
	Pattern  string   // Glob from the config, or the file given on the command line
	RuleSets []string // Rule sets bound to the target
	Files    int      // Files the pattern expanded to
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *TargetOperation
	operations []FileOperation
	counts     map[status.FileStatus]int
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		counts:  make(map[status.FileStatus]int),
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func statusSymbol(s status.FileStatus) string {
	switch s {
	case status.StatusPatched:
		return color.New(color.FgGreen).Sprint("✓")
	case status.StatusPending:
		return color.New(color.FgBlue).Sprint("⟳")
	case status.StatusRestored:
		return color.New(color.FgCyan).Sprint("↺")
	case status.StatusFailed:
		return color.New(color.FgRed).Sprint("✗")
	default:
		return color.New(color.FgYellow).Sprint("-")
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	statusText := op.Status.String()
	if op.Fired > 0 {
		statusText = fmt.Sprintf("%s (%d)", statusText, op.Fired)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		statusSymbol(op.Status),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", setWidth, strings.Join(op.RuleSets, ","))),
		fmt.Sprintf("%-*s", statusWidth, statusText))
}

// 📝 LogFileOperation logs what happened to a file
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)
	l.counts[op.Status]++

	fmt.Fprintln(l.console, l.formatFileOperation(op))
	if op.Err != nil {
		fmt.Fprintf(l.console, "%s%s\n", strings.Repeat(" ", ruleIndent), color.New(color.FgRed).Sprint(op.Err.Error()))
	}

	event := l.zlog.Info()
	if op.Err != nil {
		event = l.zlog.Error().Err(op.Err)
	}
	event.
		Str("file", op.Path).
		Strs("rulesets", op.RuleSets).
		Str("status", op.Status.String()).
		Int("fired", op.Fired).
		Int("skipped", op.Skipped).
		Msg("file operation")
}

// 📝 LogRuleOperation logs one rule's outcome under the current file
func (l *Logger) LogRuleOperation(ctx context.Context, op RuleOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var symbol string
	switch op.Status {
	case "applied":
		symbol = color.New(color.FgGreen).Sprint("+")
	case "unchanged":
		symbol = color.New(color.FgCyan).Sprint("=")
	default:
		symbol = color.New(color.Faint).Sprint("·")
	}

	line := fmt.Sprintf("%s%s %s %s", strings.Repeat(" ", ruleIndent), symbol, op.Rule, color.New(color.Faint).Sprint(op.Strategy))
	if op.Candidates > 1 {
		line += color.New(color.FgYellow).Sprintf(" (%d candidates, used first)", op.Candidates)
	}
	fmt.Fprintln(l.console, line)

	l.zlog.Debug().
		Str("rule", op.Rule).
		Str("strategy", op.Strategy).
		Str("status", op.Status).
		Int("candidates", op.Candidates).
		Msg("rule operation")
}

// 📝 StartTarget starts a new target
func (l *Logger) StartTarget(ctx context.Context, op TargetOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Pattern),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(strings.Join(op.RuleSets, ", ")))

	l.zlog.Info().
		Str("pattern", op.Pattern).
		Strs("rulesets", op.RuleSets).
		Int("files", op.Files).
		Msg("starting target")
}

// 📝 EndTarget ends the current target
func (l *Logger) EndTarget(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("pattern", l.currentOp.Pattern).
		Int("files", len(l.operations)).
		Msg("target complete")

	l.currentOp = nil
	l.operations = nil
}

// Counts returns how many files ended in each status so far
func (l *Logger) Counts() map[status.FileStatus]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[status.FileStatus]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// 📊 Summary prints a table of file counts per status
func (l *Logger) Summary() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"status", "files"}}
	for _, s := range []status.FileStatus{
		status.StatusPatched,
		status.StatusPending,
		status.StatusUnchanged,
		status.StatusRestored,
		status.StatusFailed,
	} {
		if n := l.counts[s]; n > 0 {
			data = append(data, []string{s.String(), fmt.Sprint(n)})
		}
	}
	if len(data) == 1 {
		fmt.Fprintln(l.console, color.New(color.Faint).Sprint("no files matched"))
		return nil
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintf(l.console, "\n%s\n", table)
	return nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Raw writes text to the console as is
func (l *Logger) Raw(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, text)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
