package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Options{Level: "warn", Format: "JSON"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestNewFallbacks(t *testing.T) {
	var buf bytes.Buffer
	options := &Options{Level: "loud", Format: "yaml"}
	logger := newLogger(options, &buf)
	require.NotNil(t, logger)
	assert.Empty(t, options.Level)
	assert.Equal(t, "text", options.Format)
	assert.Contains(t, buf.String(), `msg="ignored logger options" level=loud format=yaml`)
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger := New(&Options{File: path})
	logger.Info("to file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=\"to file\"")
}

func TestNewLevelOffset(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Options{Level: "INFO+2"}, &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewUnwritableFile(t *testing.T) {
	var buf bytes.Buffer
	options := &Options{File: filepath.Join(t.TempDir(), "missing", "app.log")}
	logger := newLogger(options, &buf)
	require.NotNil(t, logger)
	assert.Empty(t, options.File)
	assert.Contains(t, buf.String(), "ignored logger options")
}

func TestNewDevNull(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Options{File: os.DevNull}, &buf)
	logger.Error("dropped")
	assert.Empty(t, buf.String())
}
