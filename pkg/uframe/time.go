package uframe

import (
	"errors"
	"fmt"
	"time"
)

// QueryTimeLayout is the fixed-precision layout used for the beginDT and
// endDT bounds of synthesized data requests.
const QueryTimeLayout = "2006-01-02T15:04:05.000000Z"

// EventTimeLayout is the second-precision layout used for deployment event
// timestamps.
const EventTimeLayout = "2006-01-02T15:04:05Z"

// ErrUnparseableBound marks a recorded availability bound that cannot be
// parsed. The stream or event carrying it is excluded from downstream use.
var ErrUnparseableBound = errors.New("unparseable time bound")

// timestampLayouts are tried in order by ParseTimestamp. The catalog reports
// millisecond precision; operator input is frequently date-only.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp in any of the formats the catalog and
// operators use. Timestamps without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// FormatQueryTime renders t for a request bound: UTC with microsecond
// precision, matching the format the download service accepts.
func FormatQueryTime(t time.Time) string {
	return t.UTC().Format(QueryTimeLayout)
}

// FormatEventTime renders t at second precision for deployment reports.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format(EventTimeLayout)
}

// FromEpochMillis converts a UFrame epoch-milliseconds value to UTC.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
