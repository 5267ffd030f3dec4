package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "wasteatlas-api", "info", "json")
	logger.Debug("hidden")
	logger.Info("atlas installed", "layers", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "atlas installed", rec["msg"])
	assert.Equal(t, "wasteatlas-api", rec["service"])
	assert.EqualValues(t, 2, rec["layers"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", "debug", "text").Debug("step", "index", 3)
	assert.Contains(t, buf.String(), "msg=step")
	assert.Contains(t, buf.String(), "index=3")
	assert.NotContains(t, buf.String(), "service=")
}
