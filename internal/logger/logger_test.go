package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWithRequestAndError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Format: "json", Out: &buf})

	r := httptest.NewRequest("GET", "/api/run?model=X3", nil)
	r.Header.Set("X-Request-ID", "abc123")
	l.WithRequest(r).Debug("handled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc123", line["req_id"])
	assert.Equal(t, "/api/run", line["path"])
	assert.Equal(t, "handled", line["msg"])

	buf.Reset()
	l.WithError(errors.New("boom")).Error("failed")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Out: &buf})
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
