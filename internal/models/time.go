package models

import (
	"time"
)

// timestampLayouts are tried in order when parsing persisted timestamps.
// RFC3339 is the canonical wire format; the slash layout survives from data
// written by early mobile builds and must keep parsing forever.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006-01-02",
}

// ParseTimestamp parses a persisted timestamp into epoch milliseconds.
// Missing or malformed values degrade to 0 rather than failing: sorting and
// conflict classification must stay total over whatever storage hands back.
func ParseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// NowTimestamp returns the current UTC time in the canonical wire format.
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
