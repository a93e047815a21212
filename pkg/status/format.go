package status

import (
	"fmt"
)

// FileFormatter defines how file status should be formatted
type FileFormatter interface {
	// FormatFileOperation formats what a run did to a file
	FormatFileOperation(info FileInfo) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file status message with emojis
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	switch info.Status {
	case StatusPatched:
		return fmt.Sprintf("🩹 Patched %s%s", info.Path, ruleSuffix(info.Rules))
	case StatusPending:
		return fmt.Sprintf("📝 Would patch %s%s", info.Path, ruleSuffix(info.Rules))
	case StatusRestored:
		return fmt.Sprintf("⏪ Restored %s", info.Path)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s", info.Path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", info.Path)
	}
}

func ruleSuffix(rules []string) string {
	switch len(rules) {
	case 0:
		return ""
	case 1:
		return " (1 rule)"
	default:
		return fmt.Sprintf(" (%d rules)", len(rules))
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}
	if percentage > 100 {
		percentage = 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
