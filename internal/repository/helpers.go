package repository

import (
	"time"
)

// timeLayout is the format for storing signature times as text
const timeLayout = time.RFC3339Nano

// parseTime parses a time string in timeLayout
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime formats t in UTC using timeLayout
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
