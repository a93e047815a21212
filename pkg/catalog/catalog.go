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

// Package catalog holds the built-in rule sets that migrate the generic block
// editor from the inline mention text field to the mention webview.
package catalog

import (
	"bytes"
	"embed"
	"path"
	"sync"

	"github.com/walteh/patchrc/pkg/config"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultTarget is the file the built-in rule sets were written against
const DefaultTarget = "lib/ui/organisms/editors/generic_block_editor.dart"

//go:embed rulesets/*.yaml
var files embed.FS

var load = sync.OnceValues(func() ([]config.RuleSet, error) {
	entries, err := files.ReadDir("rulesets")
	if err != nil {
		return nil, errors.Errorf("reading embedded rule sets: %w", err)
	}

	sets := make([]config.RuleSet, 0, len(entries))
	for _, entry := range entries {
		name := path.Join("rulesets", entry.Name())
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", name, err)
		}

		var rs config.RuleSet
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&rs); err != nil {
			return nil, errors.Errorf("parsing %s: %w", name, err)
		}
		sets = append(sets, rs.AsBuiltin())
	}
	return sets, nil
})

// 📚 RuleSets returns the built-in rule sets ordered by name
func RuleSets() ([]config.RuleSet, error) {
	sets, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]config.RuleSet, len(sets))
	copy(out, sets)
	return out, nil
}

// MustRuleSets is RuleSets that panics on error. The rule sets are embedded
// at build time, so an error here is a broken build.
func MustRuleSets() []config.RuleSet {
	sets, err := RuleSets()
	if err != nil {
		panic(err)
	}
	return sets
}

// Names returns the built-in rule set names
func Names() []string {
	sets := MustRuleSets()
	names := make([]string, len(sets))
	for i, rs := range sets {
		names[i] = rs.Name
	}
	return names
}
