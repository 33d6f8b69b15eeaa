package mail

import (
	"strings"
	"time"
)

// Truncate shortens text to max characters, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

// FormatTimestamp renders an RFC 3339 timestamp in a human-readable form.
// Unparseable input is returned as-is.
func FormatTimestamp(timestamp string) string {
	ts := strings.Replace(timestamp, "Z", "+00:00", 1)
	t, err := time.Parse("2006-01-02T15:04:05-07:00", ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return timestamp
		}
	}
	return t.Format("Jan 02, 2006 03:04 PM")
}
