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

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFound means the locator does not occur in the text
	ErrNotFound = errors.Base("locator not found")

	// ErrUnterminatedRegion means a structural scan hit the end of the
	// text before its depth returned to the seed value, or the marker
	// opened no block at all
	ErrUnterminatedRegion = errors.Base("unterminated region")

	// ErrUnbalancedRegion means a structural scan saw a closing delimiter
	// below the depth the region was opened at
	ErrUnbalancedRegion = errors.Base("unbalanced region")
)

// 🏷️ Kind names a matching strategy
type Kind string

const (
	KindLiteral    Kind = "literal"
	KindRegex      Kind = "regex"
	KindStructural Kind = "structural"
	KindLine       Kind = "line"
	KindTail       Kind = "tail"
)

// Span is a half-open byte range [Start, End) into the text it was found in.
// Spans are only valid for the exact text they were resolved against.
type Span struct {
	Start int
	End   int
}

// Len returns End - Start
func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string { return fmt.Sprintf("[%d, %d)", s.Start, s.End) }

// Region is the span found by a structural scan together with the depths
// it was opened and closed at. OpenDepth always equals CloseDepth.
type Region struct {
	Span
	OpenDepth  int
	CloseDepth int
	MaxDepth   int
	StartLine  int
	EndLine    int
}

// 🎯 Match is the resolved location of a locator
type Match struct {
	Span

	// Text is the matched substring
	Text string

	// Groups holds regex capture groups; Groups[0] is the whole match.
	// Non-regex strategies set Groups to []string{Text}.
	Groups []string

	// Named maps named capture groups to their values
	Named map[string]string

	// Candidates is how many places the locator matched. Only the first
	// one is returned; more than one is an ambiguity the caller decides on.
	Candidates int

	// Region is set by the structural strategy
	Region *Region
}

// 🔍 Matcher locates a region of text. Implementations are read only.
type Matcher interface {
	Kind() Kind
	Find(text string) (*Match, error)
	// Describe returns a short human readable form of the locator
	Describe() string
}

func newMatch(text string, start, end, candidates int) *Match {
	s := text[start:end]
	return &Match{
		Span:       Span{Start: start, End: end},
		Text:       s,
		Groups:     []string{s},
		Candidates: candidates,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
