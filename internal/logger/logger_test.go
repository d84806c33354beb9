package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markis/flashdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "flashdeck.log")

	log, err := logger.New(logger.Options{FilePath: path, Level: "info"})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Warn("card rejected", zap.String("line", "{bad"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "card rejected", entry["msg"])
	assert.Equal(t, "{bad", entry["line"])
	assert.Contains(t, entry, "timestamp")
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Console: &buf, Level: "debug"})
	require.NoError(t, err)

	log.Debug("dispatching request")
	assert.Contains(t, buf.String(), "dispatching request")
}

func TestNoSinksIsNop(t *testing.T) {
	log, err := logger.New(logger.Options{})
	require.NoError(t, err)
	log.Info("dropped")
}

func TestBadLevel(t *testing.T) {
	_, err := logger.New(logger.Options{Level: "loud"})
	assert.Error(t, err)
}
