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

package buffer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Write(ctx context.Context, content []byte) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func TestBuffer_LineViewConsistency(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLines []string
	}{
		{name: "empty", text: "", wantLines: []string{""}},
		{name: "single_line", text: "abc", wantLines: []string{"abc"}},
		{name: "trailing_newline", text: "a\nb\n", wantLines: []string{"a", "b", ""}},
		{name: "crlf_kept_in_line", text: "a\r\nb", wantLines: []string{"a\r", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.text)
			assert.Equal(t, tt.wantLines, b.Lines())
			assert.Equal(t, tt.text, strings.Join(b.Lines(), "\n"))
			assert.Equal(t, len(tt.wantLines), b.LineCount())
		})
	}
}

func TestBuffer_Replace(t *testing.T) {
	b := New("A-B-C\nsecond")
	v := b.Version()

	require.NoError(t, b.Replace(2, 3, "X"))
	assert.Equal(t, "A-X-C\nsecond", b.Text())
	assert.Equal(t, []string{"A-X-C", "second"}, b.Lines())
	assert.Greater(t, b.Version(), v)

	require.NoError(t, b.Replace(5, 6, "\nmiddle\n"))
	assert.Equal(t, []string{"A-X-C", "middle", "second"}, b.Lines())

	off, err := b.LineOffset(2)
	require.NoError(t, err)
	assert.Equal(t, "second", b.Text()[off:])
	assert.Equal(t, 2, b.LineAt(off))
	assert.Equal(t, 1, b.LineAt(off-1))
}

func TestBuffer_ReplaceRejectsBadSpans(t *testing.T) {
	b := New("abc")
	assert.Error(t, b.Replace(-1, 1, ""))
	assert.Error(t, b.Replace(2, 1, ""))
	assert.Error(t, b.Replace(0, 4, ""))
	assert.Equal(t, "abc", b.Text())
}

func TestBuffer_Line(t *testing.T) {
	b := New("one\ntwo")
	line, err := b.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = b.Line(2)
	assert.Error(t, err)
}

func TestBuffer_LoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory("hello\nworld\n")

	b, err := Load(ctx, mem)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", b.Text())

	b.SetLines([]string{"hi", "world", ""})
	require.NoError(t, b.Save(ctx, mem))
	assert.Equal(t, "hi\nworld\n", mem.String())
	assert.Equal(t, 1, mem.Writes())
}

func TestBuffer_SaveWrapsSinkFailure(t *testing.T) {
	ctx := context.Background()
	sink := &mockSink{}
	sink.On("Write", ctx, []byte("text")).Return(errors.New("disk full"))

	err := New("text").Save(ctx, sink)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSinkWrite), "error should be a sink write failure")
	assert.Contains(t, err.Error(), "disk full")
	sink.AssertExpectations(t)
}

func TestBuffer_Clone(t *testing.T) {
	b := New("abc")
	c := b.Clone()
	require.NoError(t, c.Replace(0, 1, "z"))
	assert.Equal(t, "abc", b.Text())
	assert.Equal(t, "zbc", c.Text())
}
