package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_PrintInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	logger.PrintInfo("starting server", map[string]string{"addr": ":4000"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "starting server", entries[0]["message"])
	assert.Equal(t, map[string]any{"addr": ":4000"}, entries[0]["properties"])
	assert.NotEmpty(t, entries[0]["time"])
	assert.Nil(t, entries[0]["trace"])
}

func TestLogger_PrintError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	logger.PrintError(errors.New("boom"), nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "boom", entries[0]["message"])
	assert.NotEmpty(t, entries[0]["trace"])
	assert.Nil(t, entries[0]["properties"])
}

func TestLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelError)

	logger.PrintInfo("ignored", nil)
	assert.Empty(t, buf.String())

	off := New(&buf, LevelOff)
	off.PrintError(errors.New("ignored"), nil)
	assert.Empty(t, buf.String())
}

func TestLogger_Write(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	n, err := logger.Write([]byte("http: TLS handshake error\n"))
	require.NoError(t, err)
	assert.Equal(t, 26, n)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "http: TLS handshake error", entries[0]["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "FATAL", LevelFatal.String())
}
