package operation

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📄 Job is one file and the rule sets to apply to it, in order
type Job struct {
	Path     string
	RuleSets []string
}

// 🗂️ Group is the jobs that came out of one target
type Group struct {
	Pattern  string
	RuleSets []string
	Jobs     []Job
}

// 🗺️ Plan expands targets into per-file jobs. Explicit Files win over the
// config targets. A file matched by several targets is planned once, under
// the first target, with the rule sets of every matching target in order.
func (op *BaseOperation) Plan(ctx context.Context) ([]Group, error) {
	logger := zerolog.Ctx(ctx)

	if len(op.Files) > 0 {
		if len(op.RuleSets) == 0 {
			return nil, errors.New("at least one rule set is required when files are given")
		}
		for _, name := range op.RuleSets {
			if _, err := op.Config.RuleSet(name); err != nil {
				return nil, err
			}
		}

		groups := make([]Group, 0, len(op.Files))
		for _, f := range op.Files {
			rel := op.relPath(f)
			groups = append(groups, Group{
				Pattern:  rel,
				RuleSets: op.RuleSets,
				Jobs:     []Job{{Path: rel, RuleSets: op.RuleSets}},
			})
		}
		return groups, nil
	}

	if len(op.Config.Targets) == 0 {
		return nil, errors.New("no targets configured and no files given")
	}

	fsys := os.DirFS(op.Dir)
	var groups []Group
	owner := make(map[string][2]int) // path -> group, job index

	for _, t := range op.Config.Targets {
		rulesets := op.narrow(t.RuleSets)
		if len(rulesets) == 0 {
			logger.Debug().Str("target", t.Path).Msg("no selected rule sets for target, skipping")
			continue
		}

		matches, err := doublestar.Glob(fsys, strings.TrimPrefix(t.Path, "./"), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding target %q: %w", t.Path, err)
		}
		sort.Strings(matches)

		group := Group{Pattern: t.Path, RuleSets: rulesets}
		for _, m := range matches {
			if op.skip(ctx, m, t.Ignore) {
				continue
			}
			if at, ok := owner[m]; ok {
				prev := &groups[at[0]].Jobs[at[1]]
				prev.RuleSets = appendUnique(prev.RuleSets, rulesets...)
				continue
			}
			owner[m] = [2]int{len(groups), len(group.Jobs)}
			group.Jobs = append(group.Jobs, Job{Path: m, RuleSets: append([]string(nil), rulesets...)})
		}

		if len(matches) == 0 {
			logger.Warn().Str("target", t.Path).Msg("target matched no files")
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// narrow keeps only the rule sets selected on the command line
func (op *BaseOperation) narrow(rulesets []string) []string {
	if len(op.RuleSets) == 0 {
		return rulesets
	}
	var out []string
	for _, rs := range rulesets {
		for _, want := range op.RuleSets {
			if rs == want {
				out = append(out, rs)
				break
			}
		}
	}
	return out
}

// 🔍 skip reports whether a globbed file is excluded
func (op *BaseOperation) skip(ctx context.Context, file string, ignore []string) bool {
	logger := zerolog.Ctx(ctx)

	if strings.HasSuffix(file, status.BackupSuffix) || file == path.Clean(op.Config.Options.LockFile) {
		return true
	}

	for _, pattern := range ignore {
		matched, err := doublestar.Match(pattern, file)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("path", file).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			logger.Debug().Str("file", file).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

// Jobs flattens groups
func Jobs(groups []Group) []Job {
	var out []Job
	for _, g := range groups {
		out = append(out, g.Jobs...)
	}
	return out
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, have := range list {
			if have == it {
				found = true
				break
			}
		}
		if !found {
			list = append(list, it)
		}
	}
	return list
}
