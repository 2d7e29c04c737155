package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Format: FormatJSON, App: "pet-health-log", Output: &buf})

	l.With(map[string]any{"req_id": "abc"}).Warn("alert section failed", map[string]any{
		"kind": "vaccines",
		"err":  errors.New("boom"),
		"":     "dropped",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "alert section failed", entry["msg"])
	assert.Equal(t, "pet-health-log", entry["app"])
	assert.Equal(t, "abc", entry["req_id"])
	assert.Equal(t, "vaccines", entry["kind"])
	assert.Equal(t, "boom", entry["err"])
	assert.NotContains(t, entry, "")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: FormatJSON, Output: &buf})

	l.Info("hidden", nil)
	l.Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	l.Error("shown", nil)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestParse(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat("whatever"))
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("").String())
}
