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

// Package buffer holds the in-memory source text that rules are applied to.
package buffer

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrSinkWrite is returned when the final text could not be persisted.
var ErrSinkWrite = errors.Base("sink write failure")

// 📥 Source supplies the full original text of a buffer
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// 📤 Sink receives the full final text of a buffer. Implementations must
// replace the prior content as a whole or leave it untouched.
type Sink interface {
	Write(ctx context.Context, content []byte) error
}

// 📄 Buffer owns the text under transformation and its line view.
// The line view is recomputed on every mutation, so
// strings.Join(b.Lines(), "\n") == b.Text() always holds.
type Buffer struct {
	text    string
	lines   []string
	offsets []int
	version int
}

// 🏭 New creates a buffer holding text
func New(text string) *Buffer {
	b := &Buffer{}
	b.set(text)
	return b
}

// 📥 Load reads the whole source before returning, so no mutation can
// observe a partially loaded buffer.
func Load(ctx context.Context, src Source) (*Buffer, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return nil, errors.Errorf("reading source: %w", err)
	}
	return New(string(data)), nil
}

// 📤 Save writes the whole text to sink
func (b *Buffer) Save(ctx context.Context, sink Sink) error {
	if err := sink.Write(ctx, []byte(b.text)); err != nil {
		if errors.Is(err, ErrSinkWrite) {
			return err
		}
		return errors.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

func (b *Buffer) set(text string) {
	b.text = text
	b.lines = strings.Split(text, "\n")
	b.offsets = make([]int, len(b.lines))
	off := 0
	for i, line := range b.lines {
		b.offsets[i] = off
		off += len(line) + 1
	}
	b.version++
}

// Text returns the whole buffer
func (b *Buffer) Text() string { return b.text }

// Len returns the text length in bytes
func (b *Buffer) Len() int { return len(b.text) }

// Version increases with every mutation
func (b *Buffer) Version() int { return b.version }

// Lines returns a copy of the line view. Line terminators are not included;
// a trailing newline yields a final empty line.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// LineCount returns the number of lines in the line view
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns line i (zero based)
func (b *Buffer) Line(i int) (string, error) {
	if i < 0 || i >= len(b.lines) {
		return "", errors.Errorf("line %d out of range [0, %d)", i, len(b.lines))
	}
	return b.lines[i], nil
}

// LineOffset returns the byte offset at which line i starts
func (b *Buffer) LineOffset(i int) (int, error) {
	if i < 0 || i >= len(b.offsets) {
		return 0, errors.Errorf("line %d out of range [0, %d)", i, len(b.offsets))
	}
	return b.offsets[i], nil
}

// LineAt returns the zero based line containing byte offset off
func (b *Buffer) LineAt(off int) int {
	lo, hi := 0, len(b.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.offsets[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// 🔄 Replace substitutes text[start:end] with s. Nothing outside the range
// changes.
func (b *Buffer) Replace(start, end int, s string) error {
	if start < 0 || start > end || end > len(b.text) {
		return errors.Errorf("invalid span [%d, %d) for buffer of length %d", start, end, len(b.text))
	}
	b.set(b.text[:start] + s + b.text[end:])
	return nil
}

// SetLines replaces the whole buffer with the joined line view
func (b *Buffer) SetLines(lines []string) {
	b.set(strings.Join(lines, "\n"))
}

// Reset replaces the whole text
func (b *Buffer) Reset(text string) {
	b.set(text)
}

// Clone returns an independent copy
func (b *Buffer) Clone() *Buffer {
	return New(b.text)
}
