package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "debug", AppName: "FairShare", AppEnv: "test"}, &buf)

	logger.Debug().Str("component", "test").Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["message"])
	require.Equal(t, "debug", line["level"])
	require.Equal(t, "FairShare", line["app"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, "test", line["component"])
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "chatty"}, &buf)

	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Info().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNewLoggerMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{File: path}, &buf)

	logger.Info().Msg("persisted")

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "persisted")
	require.Contains(t, buf.String(), "persisted")
}
