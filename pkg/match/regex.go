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
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// 🧩 Flavor selects the regular expression engine
type Flavor string

const (
	// FlavorRE2 uses the standard library engine (linear time, no backrefs)
	FlavorRE2 Flavor = "re2"
	// FlavorBacktrack uses regexp2, which supports lookaround and
	// backreferences in the style of most scripting languages
	FlavorBacktrack Flavor = "backtrack"
)

// backtrackTimeout bounds a single regexp2 match attempt
const backtrackTimeout = 10 * time.Second

// Regex finds the first match of a pattern. MatchesNewlines lets "." match
// line terminators so a pattern can cover a block; such patterns should use
// lazy quantifiers (".*?") to stop at the first closing token.
type Regex struct {
	Pattern         string
	MatchesNewlines bool
	Flavor          Flavor

	re2 *regexp.Regexp
	bt  *regexp2.Regexp
}

var _ Matcher = (*Regex)(nil)

// 🏭 NewRegex compiles pattern for the given flavor
func NewRegex(pattern string, matchesNewlines bool, flavor Flavor) (*Regex, error) {
	if pattern == "" {
		return nil, errors.New("regex locator is empty")
	}
	if flavor == "" {
		flavor = FlavorRE2
	}

	r := &Regex{Pattern: pattern, MatchesNewlines: matchesNewlines, Flavor: flavor}

	switch flavor {
	case FlavorRE2:
		expr := pattern
		if matchesNewlines {
			expr = "(?s)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
		}
		r.re2 = re
	case FlavorBacktrack:
		opts := regexp2.None
		if matchesNewlines {
			opts |= regexp2.Singleline
		}
		re, err := regexp2.Compile(pattern, opts)
		if err != nil {
			return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
		}
		re.MatchTimeout = backtrackTimeout
		r.bt = re
	default:
		return nil, errors.Errorf("unknown regex flavor %q", flavor)
	}

	return r, nil
}

// MustRegex is NewRegex that panics on error
func MustRegex(pattern string, matchesNewlines bool, flavor Flavor) *Regex {
	r, err := NewRegex(pattern, matchesNewlines, flavor)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Regex) Kind() Kind { return KindRegex }

func (r *Regex) Describe() string {
	mode := ""
	if r.MatchesNewlines {
		mode = ", dotall"
	}
	return fmt.Sprintf("regex(%s%s) %q", r.Flavor, mode, truncate(r.Pattern, 40))
}

func (r *Regex) Find(text string) (*Match, error) {
	if r.re2 == nil && r.bt == nil {
		compiled, err := NewRegex(r.Pattern, r.MatchesNewlines, r.Flavor)
		if err != nil {
			return nil, err
		}
		*r = *compiled
	}
	if r.bt != nil {
		return r.findBacktrack(text)
	}
	return r.findRE2(text)
}

func (r *Regex) findRE2(text string) (*Match, error) {
	loc := r.re2.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, ErrNotFound
	}

	m := newMatch(text, loc[0], loc[1], len(r.re2.FindAllStringIndex(text, -1)))
	m.Groups = make([]string, len(loc)/2)
	m.Named = map[string]string{}
	names := r.re2.SubexpNames()
	for i := range m.Groups {
		if loc[2*i] < 0 {
			continue
		}
		m.Groups[i] = text[loc[2*i]:loc[2*i+1]]
		if names[i] != "" {
			m.Named[names[i]] = m.Groups[i]
		}
	}
	return m, nil
}

// regexp2 reports rune offsets; they are converted to byte offsets here
func (r *Regex) findBacktrack(text string) (*Match, error) {
	first, err := r.bt.FindStringMatch(text)
	if err != nil {
		return nil, errors.Errorf("matching %q: %w", r.Pattern, err)
	}
	if first == nil {
		return nil, ErrNotFound
	}

	candidates := 0
	for m := first; m != nil; {
		candidates++
		m, err = r.bt.FindNextMatch(m)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", r.Pattern, err)
		}
	}

	idx := runeOffsets(text)
	start := idx[first.Index]
	end := idx[first.Index+first.Length]

	m := newMatch(text, start, end, candidates)
	groups := first.Groups()
	m.Groups = make([]string, len(groups))
	m.Named = map[string]string{}
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		m.Groups[i] = g.String()
		if g.Name != "" && g.Name != fmt.Sprint(i) {
			m.Named[g.Name] = g.String()
		}
	}
	return m, nil
}

// runeOffsets maps rune index to byte offset, with one extra entry for the end
func runeOffsets(text string) []int {
	out := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		out = append(out, i)
	}
	return append(out, len(text))
}
