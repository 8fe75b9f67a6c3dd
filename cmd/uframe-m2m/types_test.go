package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

func TestBuildStreamRows(t *testing.T) {
	rows := buildStreamRows("CE01ISSM-MFD35-00-DOSTAD000", []uframe.Stream{
		{
			Name:      "dosta_abcdjm_dcl_instrument",
			Method:    "telemetered",
			Count:     431250,
			BeginTime: "2017-01-01T00:00:00.000Z",
			EndTime:   "2020-01-01T00:00:00.000Z",
		},
	})
	require.Len(t, rows, 1)

	assert.Equal(t, "CE01ISSM-MFD35-00-DOSTAD000", rows[0].ReferenceDesignator)
	assert.Equal(t, "dosta_abcdjm_dcl_instrument", rows[0].Stream)

	record := rows[0].record()
	require.Len(t, record, len(streamHeaders()))
	assert.Equal(t, "431250", record[3])
	assert.Equal(t, "2017-01-01T00:00:00.000Z", record[4])
}

func TestBuildDeploymentRows(t *testing.T) {
	rd, err := uframe.ParseRefDes("CE01ISSM-MFD35-00-DOSTAD000")
	require.NoError(t, err)

	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	stop := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	rows := buildDeploymentRows([]uframe.DeploymentEvent{
		{EventID: 44917, DeploymentNumber: 11, ReferenceDesignator: rd, EventStartTime: &start},
		{EventID: 45120, DeploymentNumber: 12, ReferenceDesignator: rd, EventStartTime: &start, EventStopTime: &stop},
	}, now)
	require.Len(t, rows, 2)

	open := rows[0]
	assert.True(t, open.Active)
	assert.Equal(t, "2019-06-01T00:00:00Z", open.EventStartTs)
	assert.Nil(t, open.EventStopTs)
	require.NotNil(t, open.EventStartMs)
	assert.Equal(t, start, *open.EventStartMs)

	closed := rows[1]
	assert.False(t, closed.Active)
	require.NotNil(t, closed.EventStopTs)
	assert.Equal(t, "2022-01-01T00:00:00Z", *closed.EventStopTs)

	record := closed.record()
	require.Len(t, record, len(deploymentHeaders()))
	assert.Equal(t, "12", record[1])
	assert.Equal(t, "false", record[3])
	assert.Equal(t, "2022-01-01T00:00:00Z", record[5])

	openRecord := open.record()
	assert.Equal(t, "", openRecord[5])
	assert.Equal(t, "", openRecord[7])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"Warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"critical", zapcore.FatalLevel},
	}
	for _, tt := range tests {
		lvl, err := parseLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, lvl, tt.in)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	contents := "https%3A//ooinet.example.org/one\n\n# a comment\nhttps%3A//ooinet.example.org/two\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	urls, err := readURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https%3A//ooinet.example.org/one",
		"https%3A//ooinet.example.org/two",
	}, urls)

	_, err = readURLFile(t.TempDir() + "/absent.txt")
	assert.Error(t, err)
}
