package domain

import (
	"strings"
	"time"
)

// instantLayouts lists the timestamp shapes clients are allowed to send.
// RFC 3339 variants come first since that is what the web client produces.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses a timestamp string at full precision. The second return
// value is false when the input is empty or matches no accepted layout.
func ParseInstant(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// NormalizeInstant canonicalizes a timestamp-like input for comparison:
// parsed, converted to UTC and truncated to whole seconds. Sub-second
// precision is discarded so a value that round-trips through string
// serialization never registers as a spurious change. Absent or unparsable
// input degrades to nil rather than an error.
func NormalizeInstant(value *string) *time.Time {
	if value == nil {
		return nil
	}
	parsed, ok := ParseInstant(*value)
	if !ok {
		return nil
	}
	normalized := NormalizeTime(parsed)
	return &normalized
}

// NormalizeTime truncates an already-parsed instant to the comparison
// resolution used by the field differ.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// FormatInstant renders a timestamp-like input for display at its original
// precision as an RFC 3339 UTC string. Unparsable input degrades to nil.
func FormatInstant(value *string) *string {
	if value == nil {
		return nil
	}
	parsed, ok := ParseInstant(*value)
	if !ok {
		return nil
	}
	formatted := FormatTime(parsed)
	return &formatted
}

// FormatTime renders a stored instant for display.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
