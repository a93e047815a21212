package match

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Line finds the first line containing Contains at or after FromLine. The
// span covers the whole line including its terminating newline, so an empty
// replacement removes the line.
type Line struct {
	Contains string
	FromLine int
}

var _ Matcher = (*Line)(nil)

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) Describe() string {
	if l.FromLine > 0 {
		return fmt.Sprintf("line containing %q from line %d", truncate(l.Contains, 40), l.FromLine)
	}
	return fmt.Sprintf("line containing %q", truncate(l.Contains, 40))
}

func (l *Line) Find(text string) (*Match, error) {
	if l.Contains == "" {
		return nil, errors.New("line locator is empty")
	}
	if l.FromLine < 0 {
		return nil, errors.New("line offset must not be negative")
	}

	start, end := -1, -1
	candidates := 0
	off := 0
	for i, line := range strings.SplitAfter(text, "\n") {
		if i >= l.FromLine && strings.Contains(line, l.Contains) {
			if start < 0 {
				start, end = off, off+len(line)
			}
			candidates++
		}
		off += len(line)
	}
	if start < 0 {
		return nil, ErrNotFound
	}
	return newMatch(text, start, end, candidates), nil
}

// Tail matches from the first occurrence of Marker to the end of the text.
// It is used to cut trailing declarations off a file.
type Tail struct {
	Marker      string
	MarkerRegex bool

	marker *regexp.Regexp
}

var _ Matcher = (*Tail)(nil)

// 🏭 NewTail validates and prepares a tail matcher
func NewTail(marker string, isRegex bool) (*Tail, error) {
	if marker == "" {
		return nil, errors.New("tail marker is empty")
	}
	t := &Tail{Marker: marker, MarkerRegex: isRegex}
	if isRegex {
		re, err := regexp.Compile(marker)
		if err != nil {
			return nil, errors.Errorf("compiling marker %q: %w", marker, err)
		}
		t.marker = re
	}
	return t, nil
}

func (t *Tail) Kind() Kind { return KindTail }

func (t *Tail) Describe() string {
	return fmt.Sprintf("tail from %q", truncate(t.Marker, 40))
}

func (t *Tail) Find(text string) (*Match, error) {
	if t.MarkerRegex && t.marker == nil {
		prepared, err := NewTail(t.Marker, true)
		if err != nil {
			return nil, err
		}
		*t = *prepared
	}
	if t.Marker == "" {
		return nil, errors.New("tail marker is empty")
	}

	if t.marker != nil {
		all := t.marker.FindAllStringIndex(text, -1)
		if len(all) == 0 {
			return nil, ErrNotFound
		}
		return newMatch(text, all[0][0], len(text), len(all)), nil
	}

	idx := strings.Index(text, t.Marker)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return newMatch(text, idx, len(text), strings.Count(text, t.Marker)), nil
}
