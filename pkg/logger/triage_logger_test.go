package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var out []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		out = append(out, e)
	}
	return out
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Service: "test"})

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept %d", 1)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "kept 1", entries[0].Message)
	assert.Equal(t, "test", entries[0].Service)
}

func TestLogger_DerivedFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelDebug, Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	base.WithComponent("classifier").
		WithContext(ctx).
		WithError(errors.New("boom")).
		WithDuration(1500 * time.Microsecond).
		WithField("model", "mock").
		Info("classified")
	base.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "classifier", entries[0].Component)
	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, "boom", entries[0].Error)
	assert.InDelta(t, 1.5, entries[0].Duration, 0.001)
	assert.Equal(t, "mock", entries[0].Fields["model"])

	// parent is untouched by derived loggers
	assert.Empty(t, entries[1].Component)
	assert.Empty(t, entries[1].Fields)
}

func TestLogger_MessageWithoutArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: LevelInfo, Output: &buf}).Info("100% free")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "100% free", entries[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZerologSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, Service: "svc"})

	z := l.Zerolog("bulk")
	z.Debug().Msg("hidden")
	z.Info().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"bulk"`)
	assert.Contains(t, out, `"service":"svc"`)
}
