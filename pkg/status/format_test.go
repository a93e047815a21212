package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 🧪 TestDefaultFileFormatter tests the default file formatter implementation
func TestDefaultFileFormatter(t *testing.T) {
	tests := []struct {
		name        string
		info        FileInfo
		want        string
		description string
	}{
		{
			name:        "patched_file",
			info:        FileInfo{Path: "editor.dart", Status: StatusPatched, Rules: []string{"a", "b"}},
			want:        "🩹 Patched editor.dart (2 rules)",
			description: "should show patch symbol and rule count",
		},
		{
			name:        "patched_single_rule",
			info:        FileInfo{Path: "editor.dart", Status: StatusPatched, Rules: []string{"a"}},
			want:        "🩹 Patched editor.dart (1 rule)",
			description: "should use singular for one rule",
		},
		{
			name:        "pending_file",
			info:        FileInfo{Path: "lib/a.dart", Status: StatusPending, Rules: []string{"a"}},
			want:        "📝 Would patch lib/a.dart (1 rule)",
			description: "should show pending changes for dry runs",
		},
		{
			name:        "restored_file",
			info:        FileInfo{Path: "lib/a.dart", Status: StatusRestored},
			want:        "⏪ Restored lib/a.dart",
			description: "should show restore symbol",
		},
		{
			name:        "failed_file",
			info:        FileInfo{Path: "error.dart", Status: StatusFailed},
			want:        "❌ Failed error.dart",
			description: "should show error symbol for failed files",
		},
		{
			name:        "unchanged_file",
			info:        FileInfo{Path: "stable.dart", Status: StatusUnchanged},
			want:        "👍 Unchanged stable.dart",
			description: "should show unchanged symbol for stable files",
		},
		{
			name:        "unknown_status",
			info:        FileInfo{Path: "x.dart"},
			want:        "👍 Unchanged x.dart",
			description: "should fall back to unchanged",
		},
	}

	formatter := NewDefaultFileFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.FormatFileOperation(tt.info)
			assert.Equal(t, tt.want, got, tt.description)
		})
	}
}

// 🧪 TestProgressFormatting tests progress message formatting
func TestProgressFormatting(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{name: "zero_progress", current: 0, total: 10, expected: "⏳ Progress: 0/10 (0%)"},
		{name: "half_progress", current: 5, total: 10, expected: "⏳ Progress: 5/10 (50%)"},
		{name: "complete", current: 10, total: 10, expected: "✅ Progress: 10/10 (100%)"},
		{name: "zero_total", current: 0, total: 0, expected: "✅ Progress: 0/0 (0%)"},
		{name: "zero_total_with_current", current: 5, total: 0, expected: "✅ Progress: 5/0 (100%)"},
		{name: "current_exceeds_total", current: 15, total: 10, expected: "✅ Progress: 15/10 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewDefaultFileFormatter()
			assert.Equal(t, tt.expected, formatter.FormatProgress(tt.current, tt.total))
		})
	}
}

// 🧪 TestErrorFormatting tests error message formatting
func TestErrorFormatting(t *testing.T) {
	formatter := NewDefaultFileFormatter()
	assert.Equal(t, "❌ Error: assert.AnError general error for testing", formatter.FormatError(assert.AnError))
	assert.Equal(t, "", formatter.FormatError(nil))
}
