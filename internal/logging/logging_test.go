package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/feedlist/internal/logging"
)

func TestNewLogger_JSONWithComponentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.ComponentLogger(
		logging.NewLogger(&buf, logging.Config{Level: "debug", Format: "json"}),
		"list",
	)
	ctx := logging.ContextWithTraceID(context.Background(), "trace-123")

	logger.Debug().Ctx(ctx).Int("rows", 3).Msg("projected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "list", entry[logging.FieldComponent])
	assert.Equal(t, "trace-123", entry[logging.FieldTraceID])
	assert.Equal(t, "projected", entry["message"])
	assert.InDelta(t, 3, entry["rows"], 0)
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logged  bool
		wantLvl zerolog.Level
	}{
		{name: "debug passes debug", level: "debug", logged: true, wantLvl: zerolog.DebugLevel},
		{name: "info drops debug", level: "info", logged: false, wantLvl: zerolog.InfoLevel},
		{name: "invalid defaults to info", level: "loud", logged: false, wantLvl: zerolog.InfoLevel},
		{name: "empty defaults to info", level: "", logged: false, wantLvl: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewLogger(&buf, logging.Config{Level: tt.level})
			logger.Debug().Msg("debug line")

			assert.Equal(t, tt.logged, buf.Len() > 0)
			assert.Equal(t, tt.wantLvl, logger.GetLevel())
		})
	}
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.Config{Level: "info", Format: "console", Output: "file"})

	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "{", "console output is not JSON")
}

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "feedlist.log")

	result := logging.NewLoggerWithPath(logging.Config{Level: "info", Output: "file", File: path})
	t.Cleanup(func() { _ = result.Close() })

	require.True(t, result.UsingFile)
	assert.Equal(t, path, result.FilePath)
	assert.False(t, result.FallbackUsed)

	result.Logger.Info().Msg("to file")
	require.NoError(t, result.Close())
	require.NoError(t, result.Close(), "close is idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewLoggerWithPath_Fallback(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	result := logging.NewLoggerWithPath(logging.Config{Output: "file", File: filepath.Join(blocker, "x.log")})

	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)
}

func TestTraceIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, logging.TraceIDFromContext(ctx))

	generated := logging.GetOrGenerateTraceID(ctx)
	assert.Len(t, generated, 26, "ULIDs are 26 characters")

	ctx = logging.ContextWithTraceID(ctx, generated)
	assert.Equal(t, generated, logging.GetOrGenerateTraceID(ctx))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.Config{Level: "info"})
	ctx := logger.WithContext(context.Background())

	logging.FromContext(ctx).Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	assert.NotPanics(t, func() {
		logging.FromContext(context.Background()).Info().Msg("dropped")
	})
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	logging.PrintLogPathMessage(&buf, "/tmp/x.log")
	logging.PrintFallbackWarning(&buf, "cannot open log file")

	assert.Contains(t, buf.String(), "Logging to /tmp/x.log")
	assert.Contains(t, buf.String(), "Warning: cannot open log file")
}
