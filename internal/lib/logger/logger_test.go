package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	New("local", &buf).Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	New("dev", &buf).Debug("hello")
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hello", got["msg"])

	buf.Reset()
	l := New("prod", &buf)
	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Info("shown")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	New("staging", &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
