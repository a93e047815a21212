package config

import (
	"github.com/walteh/patchrc/pkg/match"
	"github.com/walteh/patchrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// Compile turns the declarative definition into a rule
func (d RuleDef) Compile() (rule.Rule, error) {
	if d.Name == "" {
		return rule.Rule{}, errors.New("rule name is required")
	}

	locator, err := d.locator()
	if err != nil {
		return rule.Rule{}, errors.Errorf("rule %q: %w", d.Name, err)
	}

	var replacement rule.Replacer = rule.Literal(d.Replace)
	if d.Expand {
		replacement = rule.Template(d.Replace)
	}

	return rule.Rule{
		Name:        d.Name,
		Locator:     locator,
		Replacement: replacement,
		Required:    d.Required,
		Unique:      d.Unique,
	}, nil
}

func (d RuleDef) locator() (match.Matcher, error) {
	kind := match.Kind(d.Kind)
	if kind == "" {
		kind = match.KindLiteral
	}

	switch kind {
	case match.KindLiteral:
		if d.Find == "" {
			return nil, errors.New("literal rule requires find")
		}
		return &match.Literal{Text: d.Find, Tolerant: d.Tolerant}, nil

	case match.KindRegex:
		if d.Pattern == "" {
			return nil, errors.New("regex rule requires pattern")
		}
		return match.NewRegex(d.Pattern, d.Multiline, match.Flavor(d.Flavor))

	case match.KindStructural:
		return match.NewStructural(match.Structural{
			Marker:      d.Marker,
			MarkerRegex: d.MarkerRegex,
			Open:        d.Open,
			Close:       d.Close,
			FromLine:    d.FromLine,
			LinesBefore: d.LinesBefore,
		})

	case match.KindLine:
		if d.Find == "" {
			return nil, errors.New("line rule requires find")
		}
		if d.FromLine < 0 {
			return nil, errors.New("from_line must not be negative")
		}
		return &match.Line{Contains: d.Find, FromLine: d.FromLine}, nil

	case match.KindTail:
		return match.NewTail(d.Marker, d.MarkerRegex)

	default:
		return nil, errors.Errorf("unknown kind %q", d.Kind)
	}
}

// Compile compiles every rule in order. Rule names are qualified with the
// rule set name.
func (rs RuleSet) Compile() ([]rule.Rule, error) {
	rules := make([]rule.Rule, 0, len(rs.Rules))
	names := make(map[string]bool, len(rs.Rules))
	for i, d := range rs.Rules {
		if names[d.Name] {
			return nil, errors.Errorf("ruleset %q: rule %q defined more than once", rs.Name, d.Name)
		}
		names[d.Name] = true

		r, err := d.Compile()
		if err != nil {
			return nil, errors.Errorf("ruleset %q: rule %d: %w", rs.Name, i, err)
		}
		r.Name = rs.Name + "/" + r.Name
		rules = append(rules, r)
	}
	return rules, nil
}

// Rules compiles the named rule sets and concatenates them in order
func (c *Config) Rules(names ...string) ([]rule.Rule, error) {
	var rules []rule.Rule
	for _, name := range names {
		rs, err := c.RuleSet(name)
		if err != nil {
			return nil, err
		}
		compiled, err := rs.Compile()
		if err != nil {
			return nil, err
		}
		rules = append(rules, compiled...)
	}
	return rules, nil
}
