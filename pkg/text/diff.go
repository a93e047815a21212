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

// Package text renders line diffs and encodes reversible deltas between two
// versions of a file.
package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"
)

// DefaultContext is the number of unchanged lines shown around a change
const DefaultContext = 3

// ErrDeltaMismatch is returned when a delta does not fit the text it is
// applied to
var ErrDeltaMismatch = errors.Base("delta does not match text")

// 🔁 Delta encodes the edit that turns from into to. Together with from it
// is enough to rebuild to.
func Delta(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	return dmp.DiffToDelta(diffs)
}

// ApplyDelta rebuilds the text a delta was computed towards
func ApplyDelta(from, delta string) (string, error) {
	dmp := diffmatchpatch.New()
	diffs, err := dmp.DiffFromDelta(from, delta)
	if err != nil {
		return "", errors.Errorf("%w: %w", ErrDeltaMismatch, err)
	}
	return dmp.DiffText2(diffs), nil
}

type lineOp int

const (
	opEqual lineOp = iota
	opDelete
	opInsert
)

type diffLine struct {
	op   lineOp
	text string // includes the trailing newline, if any
	old  int    // zero based index into the old text
	new  int    // zero based index into the new text
}

// lineDiff diffs a and b line by line. Every distinct line is encoded as a
// single rune so the diff runs over whole lines; the library's own line
// encoding joins decimal indexes and cannot be diffed rune by rune.
func lineDiff(a, b string) []diffLine {
	var lines []string
	index := make(map[string]rune)
	encode := func(text string) []rune {
		split := splitLines(text)
		out := make([]rune, len(split))
		for i, l := range split {
			r, ok := index[l]
			if !ok {
				r = lineRune(len(lines))
				index[l] = r
				lines = append(lines, l)
			}
			out[i] = r
		}
		return out
	}
	ra, rb := encode(a), encode(b)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(ra, rb, false)

	var out []diffLine
	oldIdx, newIdx := 0, 0
	for _, d := range diffs {
		for _, r := range d.Text {
			dl := diffLine{text: lines[runeLine(r)], old: oldIdx, new: newIdx}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				dl.op = opEqual
				oldIdx++
				newIdx++
			case diffmatchpatch.DiffDelete:
				dl.op = opDelete
				oldIdx++
			case diffmatchpatch.DiffInsert:
				dl.op = opInsert
				newIdx++
			}
			out = append(out, dl)
		}
	}
	return out
}

// surrogate code points do not survive a string round trip
const surrogateMin, surrogateCount = 0xD800, 0x800

func lineRune(i int) rune {
	r := rune(i)
	if r >= surrogateMin {
		r += surrogateCount
	}
	return r
}

func runeLine(r rune) int {
	if r >= surrogateMin+surrogateCount {
		r -= surrogateCount
	}
	return int(r)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// 📊 Stats counts added and removed lines between a and b
func Stats(a, b string) (added, removed int) {
	for _, l := range lineDiff(a, b) {
		switch l.op {
		case opInsert:
			added++
		case opDelete:
			removed++
		}
	}
	return added, removed
}

// 🎨 Unified renders a unified diff of a against b with context lines
// around each change. Output is colored unless color.NoColor is set.
// Equal inputs render as the empty string.
func Unified(path, a, b string, context int) string {
	if a == b {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	lines := lineDiff(a, b)

	var sb strings.Builder
	bold := color.New(color.Bold)
	sb.WriteString(bold.Sprintf("--- a/%s", path) + "\n")
	sb.WriteString(bold.Sprintf("+++ b/%s", path) + "\n")

	for _, h := range hunks(lines, context) {
		writeHunk(&sb, lines[h[0]:h[1]])
	}
	return sb.String()
}

// hunks groups changed lines with their context into [start, end) ranges
func hunks(lines []diffLine, context int) [][2]int {
	var out [][2]int
	for i := 0; i < len(lines); i++ {
		if lines[i].op == opEqual {
			continue
		}
		start := max(0, i-context)
		end := i + 1
		for j := i + 1; j < len(lines); j++ {
			if lines[j].op != opEqual {
				end = j + 1
				continue
			}
			if j-end >= 2*context {
				break
			}
		}
		end = min(len(lines), end+context)

		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
		} else {
			out = append(out, [2]int{start, end})
		}
		i = end - 1
	}
	return out
}

func writeHunk(sb *strings.Builder, lines []diffLine) {
	oldCount, newCount := 0, 0
	for _, l := range lines {
		if l.op != opInsert {
			oldCount++
		}
		if l.op != opDelete {
			newCount++
		}
	}

	oldStart, newStart := lines[0].old, lines[0].new
	if oldCount > 0 {
		oldStart++
	}
	if newCount > 0 {
		newStart++
	}

	sb.WriteString(color.CyanString("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount))
	sb.WriteString("\n")

	for _, l := range lines {
		body := strings.TrimSuffix(l.text, "\n")
		switch l.op {
		case opDelete:
			sb.WriteString(color.RedString("-%s", body))
		case opInsert:
			sb.WriteString(color.GreenString("+%s", body))
		default:
			sb.WriteString(" " + body)
		}
		sb.WriteString("\n")
		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\\ No newline at end of file\n")
		}
	}
}

// Summary is a one line description of the change between a and b
func Summary(a, b string) string {
	added, removed := Stats(a, b)
	return fmt.Sprintf("%s %s",
		color.GreenString("+%d", added),
		color.RedString("-%d", removed))
}
