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

// Package rule defines named transformations: a locator plus a producer of
// the replacement text.
package rule

import (
	"os"
	"strconv"
	"strings"

	"github.com/walteh/patchrc/pkg/match"
	"gitlab.com/tozd/go/errors"
)

// 📜 Rule is an immutable transformation descriptor
type Rule struct {
	// Name identifies the rule in logs and errors
	Name string
	// Locator finds the region to replace
	Locator match.Matcher
	// Replacement produces the new text for the located region
	Replacement Replacer
	// Required rules abort the run when their locator is absent.
	// Non required rules are skipped, which keeps re-runs idempotent.
	Required bool
	// Unique rules fail when the locator matches more than one place
	Unique bool
}

// Validate checks that the rule can be applied
func (r Rule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.Locator == nil {
		return errors.Errorf("rule %q: locator is required", r.Name)
	}
	if r.Replacement == nil {
		return errors.Errorf("rule %q: replacement is required", r.Name)
	}
	if tmpl, ok := r.Replacement.(Template); ok {
		if err := tmpl.checkBraces(); err != nil {
			return errors.Errorf("rule %q: %w", r.Name, err)
		}
	}
	return nil
}

// Strategy returns the matcher kind of the rule's locator
func (r Rule) Strategy() match.Kind {
	if r.Locator == nil {
		return ""
	}
	return r.Locator.Kind()
}

// 🔄 Replacer produces replacement text for a match
type Replacer interface {
	Replace(m *match.Match) (string, error)
}

// Literal replaces the match with fixed text
type Literal string

func (l Literal) Replace(*match.Match) (string, error) { return string(l), nil }

// Template expands $0, $1, ${name} and $$ from the match groups.
// Unknown references are an error so typos do not silently drop text.
type Template string

func (t Template) Replace(m *match.Match) (string, error) {
	if err := t.checkBraces(); err != nil {
		return "", err
	}

	var missing []string
	out := os.Expand(string(t), func(key string) string {
		if key == "$" {
			return "$"
		}
		if n, err := strconv.Atoi(key); err == nil {
			if n >= 0 && n < len(m.Groups) {
				return m.Groups[n]
			}
			missing = append(missing, key)
			return ""
		}
		if v, ok := m.Named[key]; ok {
			return v
		}
		missing = append(missing, key)
		return ""
	})
	if len(missing) > 0 {
		return "", errors.Errorf("template references unknown groups %v", missing)
	}
	return out, nil
}

// checkBraces rejects ${ without a closing brace and empty ${}, which
// os.Expand would drop from the output.
func (t Template) checkBraces() error {
	s := string(t)
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '$' {
			continue
		}
		switch s[i+1] {
		case '$':
			i++
		case '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return errors.Errorf("template has an unclosed ${ at offset %d", i)
			}
			if end == 0 {
				return errors.Errorf("template has an empty ${} at offset %d", i)
			}
			i += end + 2
		}
	}
	return nil
}

// Func adapts a function into a Replacer
type Func func(m *match.Match) (string, error)

func (f Func) Replace(m *match.Match) (string, error) { return f(m) }
