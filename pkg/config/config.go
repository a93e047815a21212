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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUnknownRuleSet is returned when a rule set name is not defined
	ErrUnknownRuleSet = errors.Base("unknown rule set")

	// ErrConfigNotFound is returned by Discover when no config file exists
	ErrConfigNotFound = errors.Base("no patchrc config found")
)

// DefaultLockFile is used when options.lock_file is not set
const DefaultLockFile = ".patchrc.lock"

// 📁 Candidate file names in lookup order
var configNames = []string{
	".patchrc.hcl",
	".patchrc.yaml",
	".patchrc.yml",
	".patchrc.json",
	".patchrc.toml",
	".patchrc",
}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is a complete patchrc configuration
type Config struct {
	RuleSets []RuleSet `json:"rulesets,omitempty" yaml:"rulesets,omitempty" toml:"rulesets,omitempty" hcl:"ruleset,block"`
	Targets  []Target  `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty" hcl:"target,block"`
	Options  *Options  `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty" hcl:"options,block"`

	location string
}

// 📜 RuleSet is a named, ordered list of rules
type RuleSet struct {
	Name        string    `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty" hcl:"description,optional"`
	Rules       []RuleDef `json:"rules" yaml:"rules" toml:"rules" hcl:"rule,block"`

	builtin bool
}

// Builtin reports whether the rule set came from the built-in catalog
func (rs RuleSet) Builtin() bool { return rs.builtin }

// AsBuiltin marks the rule set as coming from the built-in catalog
func (rs RuleSet) AsBuiltin() RuleSet {
	rs.builtin = true
	return rs
}

// 🔧 RuleDef is the declarative form of a rule
type RuleDef struct {
	Name string `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" hcl:"kind,optional"`

	// literal and line
	Find     string `json:"find,omitempty" yaml:"find,omitempty" toml:"find,omitempty" hcl:"find,optional"`
	Tolerant bool   `json:"tolerant,omitempty" yaml:"tolerant,omitempty" toml:"tolerant,omitempty" hcl:"tolerant,optional"`

	// regex
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty" hcl:"pattern,optional"`
	Multiline bool   `json:"multiline,omitempty" yaml:"multiline,omitempty" toml:"multiline,omitempty" hcl:"multiline,optional"`
	Flavor    string `json:"flavor,omitempty" yaml:"flavor,omitempty" toml:"flavor,omitempty" hcl:"flavor,optional"`

	// structural and tail
	Marker      string   `json:"marker,omitempty" yaml:"marker,omitempty" toml:"marker,omitempty" hcl:"marker,optional"`
	MarkerRegex bool     `json:"marker_regex,omitempty" yaml:"marker_regex,omitempty" toml:"marker_regex,omitempty" hcl:"marker_regex,optional"`
	Open        []string `json:"open,omitempty" yaml:"open,omitempty" toml:"open,omitempty" hcl:"open,optional"`
	Close       []string `json:"close,omitempty" yaml:"close,omitempty" toml:"close,omitempty" hcl:"close,optional"`
	FromLine    int      `json:"from_line,omitempty" yaml:"from_line,omitempty" toml:"from_line,omitempty" hcl:"from_line,optional"`
	LinesBefore int      `json:"lines_before,omitempty" yaml:"lines_before,omitempty" toml:"lines_before,omitempty" hcl:"lines_before,optional"`

	Replace  string `json:"replace" yaml:"replace" toml:"replace" hcl:"replace"`
	Expand   bool   `json:"expand,omitempty" yaml:"expand,omitempty" toml:"expand,omitempty" hcl:"expand,optional"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty" hcl:"required,optional"`
	Unique   bool   `json:"unique,omitempty" yaml:"unique,omitempty" toml:"unique,omitempty" hcl:"unique,optional"`
}

// 🎯 Target binds a set of files to the rule sets applied to them
type Target struct {
	Path     string   `json:"path" yaml:"path" toml:"path" hcl:"path"`
	Ignore   []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty" hcl:"ignore,optional"`
	RuleSets []string `json:"rulesets" yaml:"rulesets" toml:"rulesets" hcl:"rulesets"`
}

// ⚙️ Options are run wide switches
type Options struct {
	Backup          bool   `json:"backup,omitempty" yaml:"backup,omitempty" toml:"backup,omitempty" hcl:"backup,optional"`
	StrictAmbiguity bool   `json:"strict_ambiguity,omitempty" yaml:"strict_ambiguity,omitempty" toml:"strict_ambiguity,omitempty" hcl:"strict_ambiguity,optional"`
	Async           bool   `json:"async,omitempty" yaml:"async,omitempty" toml:"async,omitempty" hcl:"async,optional"`
	LockFile        string `json:"lock_file,omitempty" yaml:"lock_file,omitempty" toml:"lock_file,omitempty" hcl:"lock_file,optional"`
}

// 🏭 Default returns a config holding only the given built-in rule sets
func Default(builtins []RuleSet) *Config {
	cfg := &Config{}
	cfg.Merge(builtins)
	cfg.setDefaults()
	return cfg
}

// 🔍 Discover finds the config file in dir
func Discover(dir string) (string, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("%w in %s", ErrConfigNotFound, dir)
}

// 🎯 Load reads, parses and validates the config at path. Built-in rule sets
// are merged in before validation; user rule sets win on a name clash.
func Load(ctx context.Context, path string, builtins []RuleSet) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	cfg.Merge(builtins)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("rulesets", len(cfg.RuleSets)).Int("targets", len(cfg.Targets)).Msg("configuration loaded")
	return cfg, nil
}

func parse(ctx context.Context, path string, data []byte) (*Config, error) {
	if p := GetParser(path); p != nil {
		cfg, err := p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
		return cfg, nil
	}

	// a bare .patchrc may hold YAML or HCL
	if filepath.Ext(path) == "" || filepath.Base(path) == ".patchrc" {
		cfg, yerr := (&YAMLParser{}).Parse(ctx, data)
		if yerr == nil {
			return cfg, nil
		}
		cfg, herr := (&HCLParser{}).Parse(ctx, data)
		if herr == nil {
			return cfg, nil
		}
		return nil, errors.Errorf("parsing %s as YAML or HCL: %w", filepath.Base(path), errors.Join(yerr, herr))
	}

	return nil, errors.Errorf("no parser found for file: %s", path)
}

// Location returns the path the config was loaded from
func (c *Config) Location() string { return c.location }

// Dir returns the directory target paths are relative to
func (c *Config) Dir() string {
	if c.location == "" {
		return "."
	}
	return filepath.Dir(c.location)
}

// Merge adds rule sets whose names are not already defined
func (c *Config) Merge(sets []RuleSet) {
	defined := make(map[string]bool, len(c.RuleSets))
	for _, rs := range c.RuleSets {
		defined[rs.Name] = true
	}
	for _, rs := range sets {
		if defined[rs.Name] {
			continue
		}
		c.RuleSets = append(c.RuleSets, rs)
		defined[rs.Name] = true
	}
}

func (c *Config) setDefaults() {
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.Options.LockFile == "" {
		c.Options.LockFile = DefaultLockFile
	}
	for i := range c.Targets {
		c.Targets[i].Path = filepath.ToSlash(filepath.Clean(c.Targets[i].Path))
	}
}

// RuleSet returns the rule set with the given name
func (c *Config) RuleSet(name string) (RuleSet, error) {
	for _, rs := range c.RuleSets {
		if rs.Name == name {
			return rs, nil
		}
	}
	return RuleSet{}, errors.Errorf("%w: %q", ErrUnknownRuleSet, name)
}

// 🔍 Validate checks that the config is consistent and every rule compiles
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.RuleSets))
	for i, rs := range c.RuleSets {
		if rs.Name == "" {
			return errors.Errorf("ruleset %d: name is required", i)
		}
		if seen[rs.Name] {
			return errors.Errorf("ruleset %q: defined more than once", rs.Name)
		}
		seen[rs.Name] = true

		if len(rs.Rules) == 0 {
			return errors.Errorf("ruleset %q: at least one rule is required", rs.Name)
		}
		if _, err := rs.Compile(); err != nil {
			return err
		}
	}

	for i, t := range c.Targets {
		if strings.TrimSpace(t.Path) == "" {
			return errors.Errorf("target %d: path is required", i)
		}
		if filepath.IsAbs(t.Path) {
			return errors.Errorf("target %q: path must be relative to the config directory", t.Path)
		}
		if !doublestar.ValidatePattern(t.Path) {
			return errors.Errorf("target %q: invalid glob pattern", t.Path)
		}
		for _, ig := range t.Ignore {
			if !doublestar.ValidatePattern(ig) {
				return errors.Errorf("target %q: invalid ignore pattern %q", t.Path, ig)
			}
		}
		if len(t.RuleSets) == 0 {
			return errors.Errorf("target %q: at least one ruleset is required", t.Path)
		}
		for _, name := range t.RuleSets {
			if !seen[name] {
				return errors.Errorf("target %q: %w: %q", t.Path, ErrUnknownRuleSet, name)
			}
		}
	}

	return nil
}

// 🔑 Hash returns a sha256 of the config, used to detect drift between runs
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		// every field is a plain value, so marshalling cannot fail
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
