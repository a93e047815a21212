package text

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func init() {
	color.NoColor = true
}

func numbered(n int, change map[int]string) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		if s, ok := change[i]; ok {
			sb.WriteString(s + "\n")
			continue
		}
		sb.WriteString("l" + string(rune('a'+i-1)) + "\n")
	}
	return sb.String()
}

func TestDelta_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{name: "simple_edit", from: "A-X-C", to: "A-B-C"},
		{name: "multiline", from: "class A {\n  void build() {}\n}\n", to: "class A {\n  void build() {\n    body();\n  }\n}\n"},
		{name: "to_empty", from: "gone", to: ""},
		{name: "from_empty", from: "", to: "new"},
		{name: "identical", from: "same", to: "same"},
		{name: "unicode", from: "héllo → wörld", to: "hello -> world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := Delta(tt.from, tt.to)
			got, err := ApplyDelta(tt.from, delta)
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestApplyDelta_Mismatch(t *testing.T) {
	delta := Delta("a much longer original text", "short")
	_, err := ApplyDelta("other", delta)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeltaMismatch))
}

func TestUnified(t *testing.T) {
	t.Run("equal_is_empty", func(t *testing.T) {
		assert.Equal(t, "", Unified("f", "x\n", "x\n", DefaultContext))
	})

	t.Run("single_change", func(t *testing.T) {
		got := Unified("f.dart", "a\nb\nc\n", "a\nB\nc\n", 1)
		want := strings.Join([]string{
			"--- a/f.dart",
			"+++ b/f.dart",
			"@@ -1,3 +1,3 @@",
			" a",
			"-b",
			"+B",
			" c",
			"",
		}, "\n")
		assert.Equal(t, want, got)
	})

	t.Run("distant_changes_split_hunks", func(t *testing.T) {
		a := numbered(20, nil)
		b := numbered(20, map[int]string{2: "two", 18: "eighteen"})
		got := Unified("f", a, b, 2)
		assert.Equal(t, 2, strings.Count(got, "@@ -"))
		assert.Contains(t, got, "+two\n")
		assert.Contains(t, got, "+eighteen\n")
		assert.Contains(t, got, "-lb\n+two\n")
		assert.Contains(t, got, "-lr\n+eighteen\n")
		assert.Contains(t, got, "@@ -1,4 +1,4 @@")
		assert.Contains(t, got, "@@ -16,5 +16,5 @@")
		assert.NotContains(t, got, " lj\n", "lines far from any change are not shown")
	})

	t.Run("close_changes_share_hunk", func(t *testing.T) {
		a := numbered(10, nil)
		b := numbered(10, map[int]string{3: "three", 5: "five"})
		got := Unified("f", a, b, 2)
		assert.Equal(t, 1, strings.Count(got, "@@ -"))
	})

	t.Run("missing_trailing_newline", func(t *testing.T) {
		got := Unified("f", "x", "y", DefaultContext)
		assert.Equal(t, 2, strings.Count(got, "\\ No newline at end of file"))
	})

	t.Run("pure_insertion_header", func(t *testing.T) {
		got := Unified("f", "", "new\n", DefaultContext)
		assert.Contains(t, got, "@@ -0,0 +1,1 @@\n+new\n")
	})
}

func TestStats(t *testing.T) {
	many := func(n int, last string) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, "line %d\n", i)
		}
		sb.WriteString(last + "\n")
		return sb.String()
	}

	tests := []struct {
		name        string
		a           string
		b           string
		wantAdded   int
		wantRemoved int
	}{
		{name: "replace_and_append", a: "a\nb\nc\n", b: "a\nB\nc\nd\n", wantAdded: 2, wantRemoved: 1},
		{name: "equal", a: "a\nb\n", b: "a\nb\n"},
		{name: "two_distant_edits", a: numbered(20, nil), b: numbered(20, map[int]string{2: "two", 18: "eighteen"}), wantAdded: 2, wantRemoved: 2},
		{name: "repeated_lines", a: "}\n}\n}\n", b: "}\nx\n}\n}\n", wantAdded: 1},
		{name: "more_lines_than_surrogate_offset", a: many(60000, "old"), b: many(60000, "new"), wantAdded: 1, wantRemoved: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := Stats(tt.a, tt.b)
			assert.Equal(t, tt.wantAdded, added, "added")
			assert.Equal(t, tt.wantRemoved, removed, "removed")
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "+2 -1", Summary("a\nb\nc\n", "a\nB\nc\nd\n"))
}
