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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLiteral_Find(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		locator        Literal
		wantSpan       Span
		wantText       string
		wantCandidates int
		wantErr        error
	}{
		{
			name:           "single_occurrence",
			text:           "A-B-C",
			locator:        Literal{Text: "B"},
			wantSpan:       Span{Start: 2, End: 3},
			wantText:       "B",
			wantCandidates: 1,
		},
		{
			name:           "first_of_many",
			text:           "x.x.x",
			locator:        Literal{Text: "x"},
			wantSpan:       Span{Start: 0, End: 1},
			wantText:       "x",
			wantCandidates: 3,
		},
		{
			name:    "absent",
			text:    "A-X-C",
			locator: Literal{Text: "B"},
			wantErr: ErrNotFound,
		},
		{
			name:    "whitespace_drift_not_tolerated_by_default",
			text:    "if (a)  {\n\tfoo();\n}",
			locator: Literal{Text: "if (a) {\n  foo();\n}"},
			wantErr: ErrNotFound,
		},
		{
			name:           "whitespace_drift_tolerated",
			text:           "head\nif (a)  {\n\tfoo();\n}\ntail",
			locator:        Literal{Text: "if (a) {\n  foo();\n}\n", Tolerant: true},
			wantSpan:       Span{Start: 5, End: 24},
			wantText:       "if (a)  {\n\tfoo();\n}",
			wantCandidates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.locator.Find(tt.text)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSpan, m.Span)
			assert.Equal(t, tt.wantText, m.Text)
			assert.Equal(t, tt.wantCandidates, m.Candidates)
			assert.Equal(t, tt.text[m.Start:m.End], m.Text)
		})
	}
}

func TestLiteral_EmptyLocator(t *testing.T) {
	_, err := (&Literal{}).Find("abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRegex_LazyMultilineStopsAtFirstEnd(t *testing.T) {
	text := "start\nbody one\nEND\nbetween\nEND\n"

	for _, flavor := range []Flavor{FlavorRE2, FlavorBacktrack} {
		t.Run(string(flavor), func(t *testing.T) {
			r, err := NewRegex(`start.*?END`, true, flavor)
			require.NoError(t, err)

			m, err := r.Find(text)
			require.NoError(t, err)
			assert.Equal(t, "start\nbody one\nEND", m.Text)
			assert.Equal(t, Span{Start: 0, End: 18}, m.Span)
		})
	}
}

func TestRegex_DotDoesNotCrossLinesWithoutFlag(t *testing.T) {
	r, err := NewRegex(`start.*?END`, false, FlavorRE2)
	require.NoError(t, err)

	_, err = r.Find("start\nEND")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegex_Groups(t *testing.T) {
	tests := []struct {
		name      string
		flavor    Flavor
		pattern   string
		text      string
		wantGroup []string
		wantNamed map[string]string
	}{
		{
			name:      "re2_named",
			flavor:    FlavorRE2,
			pattern:   `height: (?P<h>\d+)`,
			text:      "width: 3, height: 100",
			wantGroup: []string{"height: 100", "100"},
			wantNamed: map[string]string{"h": "100"},
		},
		{
			name:      "backtrack_named",
			flavor:    FlavorBacktrack,
			pattern:   `height: (?<h>\d+)`,
			text:      "width: 3, height: 100",
			wantGroup: []string{"height: 100", "100"},
			wantNamed: map[string]string{"h": "100"},
		},
		{
			name:      "backtrack_lookahead",
			flavor:    FlavorBacktrack,
			pattern:   `_controller(?=\.dispose)`,
			text:      "_controller.text; _controller.dispose();",
			wantGroup: []string{"_controller"},
			wantNamed: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegex(tt.pattern, false, tt.flavor)
			require.NoError(t, err)

			m, err := r.Find(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantGroup, m.Groups)
			assert.Equal(t, tt.wantNamed, m.Named)
			assert.Equal(t, tt.text[m.Start:m.End], m.Text)
		})
	}
}

func TestRegex_BacktrackByteOffsetsWithMultibyteText(t *testing.T) {
	r, err := NewRegex(`menções`, false, FlavorBacktrack)
	require.NoError(t, err)

	text := "/// TextField com suporte a menções (@mentions)"
	m, err := r.Find(text)
	require.NoError(t, err)
	assert.Equal(t, "menções", text[m.Start:m.End])
}

func TestRegex_Candidates(t *testing.T) {
	r, err := NewRegex(`a\d`, false, FlavorRE2)
	require.NoError(t, err)
	m, err := r.Find("a1 a2 a3")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Candidates)

	b, err := NewRegex(`a\d`, false, FlavorBacktrack)
	require.NoError(t, err)
	m, err = b.Find("a1 a2 a3")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Candidates)
}

func TestRegex_InvalidPattern(t *testing.T) {
	_, err := NewRegex(`(`, false, FlavorRE2)
	assert.Error(t, err)
	_, err = NewRegex(`(`, false, FlavorBacktrack)
	assert.Error(t, err)
	_, err = NewRegex(`a`, false, Flavor("pcre"))
	assert.Error(t, err)
}

func TestLine_Find(t *testing.T) {
	text := "late TextEditingController _controller;\nfoo\nlate TextEditingController _controller;\nbar"

	m, err := (&Line{Contains: "late TextEditingController _controller;"}).Find(text)
	require.NoError(t, err)
	assert.Equal(t, "late TextEditingController _controller;\n", m.Text)
	assert.Equal(t, 2, m.Candidates)

	m, err = (&Line{Contains: "late TextEditingController _controller;", FromLine: 1}).Find(text)
	require.NoError(t, err)
	assert.Equal(t, 44, m.Start)
	assert.Equal(t, 1, m.Candidates)

	_, err = (&Line{Contains: "missing"}).Find(text)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTail_Find(t *testing.T) {
	text := "class A {}\n\n/// helper\nclass B {}\n"

	tail, err := NewTail("\n/// helper\n", false)
	require.NoError(t, err)
	m, err := tail.Find(text)
	require.NoError(t, err)
	assert.Equal(t, "\n/// helper\nclass B {}\n", m.Text)
	assert.Equal(t, len(text), m.End)

	re, err := NewTail(`(?m)^/// \w+`, true)
	require.NoError(t, err)
	m, err = re.Find(text)
	require.NoError(t, err)
	assert.Equal(t, "/// helper\nclass B {}\n", m.Text)

	_, err = tail.Find("class A {}")
	assert.True(t, errors.Is(err, ErrNotFound))
}
