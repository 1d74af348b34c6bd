package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerFields(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	require.NoError(t, SetLevel("debug"))

	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "registry")
	l.Debugw("resolved", map[string]any{"family": "schedule", "variant": "LinearSchedule"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "schedule", entry["family"])
	assert.Equal(t, "resolved", entry["message"])
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.NoError(t, SetLevel(""))
	assert.Error(t, SetLevel("loud"))
}
