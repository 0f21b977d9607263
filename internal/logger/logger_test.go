package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/internal/logger"
)

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "info")

	log.Info("session started", "session_id", "s", "pages", 6)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session started", entry["msg"])
	assert.Equal(t, "s", entry["session_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "error")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "chatty")

	log.Debug("dropped")
	assert.Zero(t, buf.Len())

	log.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}
