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

package match

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	defaultOpen  = []string{"{"}
	defaultClose = []string{"}"}
)

// 🏗️ Structural finds a region that starts at the first line matching
// Marker and ends where the nesting depth, tracked through Open and Close
// tokens, returns to the value it had before the marker line.
//
// Only the marker and delimiter balance are used, so the region is found
// even when the text inside it has drifted between runs.
type Structural struct {
	// Marker identifies the first line of the region
	Marker string
	// MarkerRegex treats Marker as an RE2 pattern matched per line
	MarkerRegex bool
	// Open and Close are the delimiter tokens; they default to "{" and "}"
	Open  []string
	Close []string
	// FromLine skips marker candidates on lines before this zero based index
	FromLine int
	// LinesBefore extends the region start this many lines above the
	// marker line, e.g. to take an annotation along with a method
	LinesBefore int

	marker *regexp.Regexp
}

var _ Matcher = (*Structural)(nil)

// 🏭 NewStructural validates and prepares a structural matcher
func NewStructural(s Structural) (*Structural, error) {
	if s.Marker == "" {
		return nil, errors.New("structural marker is empty")
	}
	if s.FromLine < 0 || s.LinesBefore < 0 {
		return nil, errors.New("structural line offsets must not be negative")
	}
	if len(s.Open) == 0 {
		s.Open = defaultOpen
	}
	if len(s.Close) == 0 {
		s.Close = defaultClose
	}
	for _, tok := range append(append([]string{}, s.Open...), s.Close...) {
		if tok == "" {
			return nil, errors.New("structural delimiter tokens must not be empty")
		}
	}
	if s.MarkerRegex {
		re, err := regexp.Compile(s.Marker)
		if err != nil {
			return nil, errors.Errorf("compiling marker %q: %w", s.Marker, err)
		}
		s.marker = re
	}
	return &s, nil
}

func (s *Structural) Kind() Kind { return KindStructural }

func (s *Structural) Describe() string {
	return fmt.Sprintf("structural marker %q %v..%v", truncate(s.Marker, 40), s.Open, s.Close)
}

func (s *Structural) matchesMarker(line string) bool {
	if s.marker != nil {
		return s.marker.MatchString(line)
	}
	return strings.Contains(line, s.Marker)
}

func (s *Structural) Find(text string) (*Match, error) {
	if s.Marker == "" || len(s.Open) == 0 || len(s.Close) == 0 || (s.MarkerRegex && s.marker == nil) {
		prepared, err := NewStructural(*s)
		if err != nil {
			return nil, err
		}
		*s = *prepared
	}

	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines))
	off := 0
	for i, line := range lines {
		offsets[i] = off
		off += len(line) + 1
	}

	startLine := -1
	candidates := 0
	for i := s.FromLine; i < len(lines); i++ {
		if s.matchesMarker(lines[i]) {
			if startLine < 0 {
				startLine = i
			}
			candidates++
		}
	}
	if startLine < 0 {
		return nil, ErrNotFound
	}

	region, err := s.scan(lines, offsets, startLine)
	if err != nil {
		return nil, err
	}

	first := startLine - s.LinesBefore
	if first < 0 {
		first = 0
	}
	for i := first; i < startLine; i++ {
		if s.hasTokens(lines[i]) {
			return nil, errors.Errorf("%w: line %d above the marker contains delimiters", ErrUnbalancedRegion, i+1)
		}
	}
	region.Start = offsets[first]

	m := newMatch(text, region.Start, region.End, candidates)
	m.Region = region
	return m, nil
}

// scan walks tokens from the marker line on. The seed depth is zero; the
// region closes at the first token that brings the depth back to zero once
// at least one opening token was seen. A marker line without an opening token
// must be followed, past blank lines, by a line that starts with one.
func (s *Structural) scan(lines []string, offsets []int, startLine int) (*Region, error) {
	const seed = 0
	depth := seed
	maxDepth := seed
	opened := false

	for i := startLine; i < len(lines); i++ {
		line := lines[i]
		if !opened && i > startLine {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if _, ok := hasTokenAt(trimmed, 0, s.Open); !ok {
				return nil, errors.Errorf("%w: marker on line %d opens no block before line %d", ErrUnterminatedRegion, startLine+1, i+1)
			}
		}
		for pos := 0; pos < len(line); {
			if tok, ok := hasTokenAt(line, pos, s.Open); ok {
				depth++
				opened = true
				if depth > maxDepth {
					maxDepth = depth
				}
				pos += len(tok)
				continue
			}
			if tok, ok := hasTokenAt(line, pos, s.Close); ok {
				depth--
				pos += len(tok)
				if depth < seed {
					return nil, errors.Errorf("%w: line %d closes below the depth of the marker on line %d", ErrUnbalancedRegion, i+1, startLine+1)
				}
				if opened && depth == seed {
					end := offsets[i] + pos
					if !s.hasTokens(line[pos:]) {
						end = offsets[i] + len(line)
					}
					return &Region{
						Span:       Span{Start: offsets[startLine], End: end},
						OpenDepth:  seed,
						CloseDepth: depth,
						MaxDepth:   maxDepth,
						StartLine:  startLine,
						EndLine:    i,
					}, nil
				}
				continue
			}
			pos++
		}
	}

	return nil, errors.Errorf("%w: marker on line %d still at depth %d at end of text", ErrUnterminatedRegion, startLine+1, depth)
}

func (s *Structural) hasTokens(rest string) bool {
	for _, tok := range s.Open {
		if strings.Contains(rest, tok) {
			return true
		}
	}
	for _, tok := range s.Close {
		if strings.Contains(rest, tok) {
			return true
		}
	}
	return false
}

func hasTokenAt(line string, pos int, toks []string) (string, bool) {
	for _, tok := range toks {
		if strings.HasPrefix(line[pos:], tok) {
			return tok, true
		}
	}
	return "", false
}

// CountTokens returns how many open and close tokens occur in text, scanning
// left to right the same way the structural matcher does.
func CountTokens(text string, openToks, closeToks []string) (opens, closes int) {
	if len(openToks) == 0 {
		openToks = defaultOpen
	}
	if len(closeToks) == 0 {
		closeToks = defaultClose
	}
	for pos := 0; pos < len(text); {
		if tok, ok := hasTokenAt(text, pos, openToks); ok {
			opens++
			pos += len(tok)
			continue
		}
		if tok, ok := hasTokenAt(text, pos, closeToks); ok {
			closes++
			pos += len(tok)
			continue
		}
		pos++
	}
	return opens, closes
}
