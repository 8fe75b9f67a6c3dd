package uframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    time.Time
	}{
		{
			name:     "catalog millisecond form",
			input:    "2017-01-01T00:00:00.000Z",
			expected: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339",
			input:    "2020-06-15T12:30:45Z",
			expected: time.Date(2020, 6, 15, 12, 30, 45, 0, time.UTC),
		},
		{
			name:     "naive datetime",
			input:    "2020-06-15T12:30:45",
			expected: time.Date(2020, 6, 15, 12, 30, 45, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    "2020-06-15",
			expected: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "garbage",
			input:       "not-a-time",
			expectError: true,
		},
		{
			name:        "empty",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseTimestamp(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(parsed), "expected %s, got %s", tt.expected, parsed)
		})
	}
}

func TestFormatQueryTime(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 123456789, time.UTC)
	assert.Equal(t, "2020-01-02T03:04:05.123456Z", FormatQueryTime(ts))

	// whole seconds keep the fixed precision
	ts = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2017-01-01T00:00:00.000000Z", FormatQueryTime(ts))
}

func TestFormatEventTime(t *testing.T) {
	ts := time.Date(2016, 10, 1, 16, 45, 20, 500000000, time.UTC)
	assert.Equal(t, "2016-10-01T16:45:20Z", FormatEventTime(ts))
}

func TestFromEpochMillis(t *testing.T) {
	ts := FromEpochMillis(1475340320000)
	assert.Equal(t, "2016-10-01T16:45:20Z", FormatEventTime(ts))
	assert.Equal(t, time.UTC, ts.Location())
}
