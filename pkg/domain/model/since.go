package model

import "time"

const sinceLayout = "2006-01-02"

// ParseSince parses a yyyy-mm-dd date as midnight UTC. An empty or
// malformed value falls back to midnight UTC on the first day of now's month.
func ParseSince(value string, now time.Time) time.Time {
	if value != "" {
		if t, err := time.ParseInLocation(sinceLayout, value, time.UTC); err == nil {
			return t
		}
	}
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
