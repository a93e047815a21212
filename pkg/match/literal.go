package match

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Literal finds the first exact occurrence of Text, scanning left to right.
//
// With Tolerant set and no exact occurrence, it falls back to comparing
// whole lines after trimming them and collapsing runs of whitespace, and
// returns the covered lines of the original text.
type Literal struct {
	Text     string
	Tolerant bool
}

var _ Matcher = (*Literal)(nil)

func (l *Literal) Kind() Kind { return KindLiteral }

func (l *Literal) Describe() string {
	return fmt.Sprintf("literal %q", truncate(l.Text, 40))
}

func (l *Literal) Find(text string) (*Match, error) {
	if l.Text == "" {
		return nil, errors.New("literal locator is empty")
	}

	if idx := strings.Index(text, l.Text); idx >= 0 {
		return newMatch(text, idx, idx+len(l.Text), strings.Count(text, l.Text)), nil
	}

	if l.Tolerant {
		if m := findNormalized(text, l.Text); m != nil {
			return m, nil
		}
	}

	return nil, ErrNotFound
}

// findNormalized slides a window of normalized search lines over the
// normalized content lines and maps the first hit back to the original text.
func findNormalized(text, search string) *Match {
	want := normalizeLines(search)
	if allBlank(want) {
		return nil
	}

	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines)+1)
	for i, line := range lines {
		offsets[i+1] = offsets[i] + len(line) + 1
	}

	have := make([]string, len(lines))
	for i, line := range lines {
		have[i] = collapseSpaces(line)
	}

	first := -1
	candidates := 0
	for i := 0; i+len(want) <= len(have); i++ {
		ok := true
		for j := range want {
			if have[i+j] != want[j] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		candidates++
		if first < 0 {
			first = i
		}
		i += len(want) - 1
	}
	if first < 0 {
		return nil
	}

	start := offsets[first]
	end := offsets[first+len(want)] - 1
	return newMatch(text, start, end, candidates)
}

func normalizeLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = collapseSpaces(line)
	}
	return out
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		if line != "" {
			return false
		}
	}
	return true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
