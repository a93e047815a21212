package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestStructural_Find(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		scanner   Structural
		wantText  string
		wantLines [2]int
		wantErr   error
	}{
		{
			name: "closes_at_own_block_not_inner",
			text: strings.Join([]string{
				"before",
				"begin {",
				"  if (a) {",
				"    x();",
				"  }",
				"  for {",
				"    if (b) { y(); }",
				"  }",
				"}",
				"after {",
				"}",
			}, "\n"),
			scanner: Structural{Marker: "begin {"},
			wantText: strings.Join([]string{
				"begin {",
				"  if (a) {",
				"    x();",
				"  }",
				"  for {",
				"    if (b) { y(); }",
				"  }",
				"}",
			}, "\n"),
			wantLines: [2]int{1, 8},
		},
		{
			name:      "marker_without_brace_waits_for_open",
			text:      "@override\nvoid dispose()\n{\n  a();\n}\nrest",
			scanner:   Structural{Marker: "void dispose()"},
			wantText:  "void dispose()\n{\n  a();\n}",
			wantLines: [2]int{1, 4},
		},
		{
			name:      "blank_lines_before_open",
			text:      "void dispose()\n\n  {\n  a();\n  }\nrest",
			scanner:   Structural{Marker: "void dispose()"},
			wantText:  "void dispose()\n\n  {\n  a();\n  }",
			wantLines: [2]int{0, 4},
		},
		{
			name:      "lines_before_takes_annotation",
			text:      "  @override\n  void dispose() {\n    a();\n  }\n",
			scanner:   Structural{Marker: "void dispose() {", LinesBefore: 1},
			wantText:  "  @override\n  void dispose() {\n    a();\n  }",
			wantLines: [2]int{1, 3},
		},
		{
			name: "from_line_skips_earlier_marker",
			text: "void f() {\n  one();\n}\nvoid f() {\n  two();\n}",
			scanner: Structural{
				Marker:   "void f() {",
				FromLine: 1,
			},
			wantText:  "void f() {\n  two();\n}",
			wantLines: [2]int{3, 5},
		},
		{
			name:      "regex_marker",
			text:      "x\nvoid didUpdateWidget(covariant _W old) {\n  super.x();\n}\n",
			scanner:   Structural{Marker: `void didUpdateWidget\(covariant \w+ \w+\)`, MarkerRegex: true},
			wantText:  "void didUpdateWidget(covariant _W old) {\n  super.x();\n}",
			wantLines: [2]int{1, 3},
		},
		{
			name:      "custom_delimiters",
			text:      "BEGIN\n  BEGIN\n  END\nEND\ntrailing",
			scanner:   Structural{Marker: "BEGIN", Open: []string{"BEGIN"}, Close: []string{"END"}},
			wantText:  "BEGIN\n  BEGIN\n  END\nEND",
			wantLines: [2]int{0, 3},
		},
		{
			name:      "close_followed_by_tokens_ends_at_token",
			text:      "begin {\n} other {\n}",
			scanner:   Structural{Marker: "begin {"},
			wantText:  "begin {\n}",
			wantLines: [2]int{0, 1},
		},
		{
			name:    "unterminated",
			text:    "begin {\n  if (a) {\n  }\n",
			scanner: Structural{Marker: "begin {"},
			wantErr: ErrUnterminatedRegion,
		},
		{
			name:    "never_opened",
			text:    "begin\nno braces here\n",
			scanner: Structural{Marker: "begin"},
			wantErr: ErrUnterminatedRegion,
		},
		{
			name:    "marker_without_open_stops_at_next_statement",
			text:    "foo();\nbar();\nclass X {\n}\n",
			scanner: Structural{Marker: "foo();"},
			wantErr: ErrUnterminatedRegion,
		},
		{
			name:    "open_later_in_next_line_does_not_count",
			text:    "foo();\nclass X {}\n",
			scanner: Structural{Marker: "foo();"},
			wantErr: ErrUnterminatedRegion,
		},
		{
			name:    "closes_below_seed",
			text:    "} begin {\n}",
			scanner: Structural{Marker: "begin"},
			wantErr: ErrUnbalancedRegion,
		},
		{
			name:    "absent_marker",
			text:    "nothing {\n}",
			scanner: Structural{Marker: "begin"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner, err := NewStructural(tt.scanner)
			require.NoError(t, err)

			m, err := scanner.Find(tt.text)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, m.Region)
			assert.Equal(t, tt.wantText, m.Text)
			assert.Equal(t, tt.wantLines[0], m.Region.StartLine)
			assert.Equal(t, tt.wantLines[1], m.Region.EndLine)
			assert.Equal(t, m.Region.OpenDepth, m.Region.CloseDepth)

			// every region is balanced
			opens, closes := CountTokens(m.Text, scanner.Open, scanner.Close)
			assert.Equal(t, opens, closes, "region should be balanced")
		})
	}
}

func TestStructural_ZeroValueIsPrepared(t *testing.T) {
	s := &Structural{Marker: "begin {"}
	m, err := s.Find("begin {\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "begin {\n}", m.Text)
	assert.Equal(t, []string{"{"}, s.Open)
}

func TestNewStructural_Validation(t *testing.T) {
	_, err := NewStructural(Structural{})
	assert.Error(t, err)
	_, err = NewStructural(Structural{Marker: "a", Open: []string{""}})
	assert.Error(t, err)
	_, err = NewStructural(Structural{Marker: "(", MarkerRegex: true})
	assert.Error(t, err)
	_, err = NewStructural(Structural{Marker: "a", FromLine: -1})
	assert.Error(t, err)
}

func TestCountTokens(t *testing.T) {
	opens, closes := CountTokens("a { b { } } }", nil, nil)
	assert.Equal(t, 2, opens)
	assert.Equal(t, 3, closes)
}
