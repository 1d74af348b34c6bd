package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corerunlog "github.com/kilianp07/hive/core/runlog"
)

func TestGroup(t *testing.T) {
	series := Group([]corerunlog.Record{
		{Name: "episode_return", Prefix: "run", Value: 1},
		{Name: "td_error", Prefix: "agent", Value: 0.5},
		{Name: "episode_return", Prefix: "run", Value: 2},
	})
	assert.Equal(t, map[string][]float64{
		"run/episode_return": {1, 2},
		"agent/td_error":     {0.5},
	}, series)
	assert.Equal(t, []string{"agent/td_error", "run/episode_return"}, Keys(series))
}

func TestRender(t *testing.T) {
	series := map[string][]float64{"run/episode_return": {1, 2, 3}, "agent/td_error": {0.1}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "chain", series, []string{"run/episode_return"}))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "run/episode_return")
	assert.NotContains(t, html, "agent/td_error")

	buf.Reset()
	require.NoError(t, Render(&buf, "chain", series, nil))
	assert.Contains(t, buf.String(), "agent/td_error")

	assert.ErrorContains(t, Render(&buf, "chain", series, []string{"missing"}), "missing")
	assert.Error(t, Render(&buf, "chain", nil, nil))
}
