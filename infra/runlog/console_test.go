package runlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, zerolog.WarnLevel)
	require.NoError(t, c.LogScalar("loss", 0.5, "agent"))
	require.NoError(t, c.LogMetrics(map[string]float64{"a": 1, "b": 2}, "run"))
	require.NoError(t, c.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "warn", first["level"])
	assert.Equal(t, "agent", first["prefix"])
	assert.Equal(t, 0.5, first["loss"])
	assert.Equal(t, "runlog", first["component"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, 1.0, second["a"])
	assert.Equal(t, 2.0, second["b"])
}
