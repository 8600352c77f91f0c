package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", true, &buf)

	logger.Debug("evicted expired entry", "key", "session")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "localkv", line["@module"])
	assert.Equal(t, "evicted expired entry", line["@message"])
	assert.Equal(t, "session", line["key"])
}

func TestNewUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("chatty", false, &buf)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
