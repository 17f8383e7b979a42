package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestStructuredLogger_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("energy-api", "test", DebugLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithAnalysisID(ctx, "an-2")
	ctx = WithFacilityID(ctx, "clinic-3")
	logger.Info(ctx, "[ANALYSIS] done", Fields{"peak_kw": 1.5})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "energy-api", entries[0].Service)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, "an-2", entries[0].AnalysisID)
	assert.Equal(t, "clinic-3", entries[0].FacilityID)
	assert.Equal(t, 1.5, entries[0].Fields["peak_kw"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("energy-api", "test", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "hidden", nil)
	logger.Info(context.Background(), "hidden", nil)
	logger.Error(context.Background(), "[DB_ERROR] failed", nil, errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "boom", entries[0].Error)
	assert.NotEmpty(t, entries[0].File)
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("energy-api", "test", InfoLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"component": "sizing", "attempt": 1})
	scoped.Info(context.Background(), "ok", Fields{"attempt": 2})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "sizing", entries[0].Fields["component"])
	assert.Equal(t, float64(2), entries[0].Fields["attempt"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "loud", want: InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
	}
}
