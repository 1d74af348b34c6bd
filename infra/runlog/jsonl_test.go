package runlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corerunlog "github.com/kilianp07/hive/core/runlog"
)

func TestJSONL_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "scalars.jsonl")
	l, err := NewJSONL(JSONLConfig{Path: path})
	require.NoError(t, err)
	tick := time.Unix(100, 0)
	l.now = func() time.Time { tick = tick.Add(time.Second); return tick }

	require.NoError(t, l.LogScalar("episode_return", 1.5, "run"))
	require.NoError(t, l.LogMetrics(map[string]float64{"lr": 0.1, "epsilon": 0.2}, "agent"))
	require.NoError(t, l.Close())

	recs, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "run/episode_return", recs[0].Key())
	assert.Equal(t, 1.5, recs[0].Value)
	assert.Equal(t, "agent/epsilon", recs[1].Key())
	assert.Equal(t, "agent/lr", recs[2].Key())
}

func TestJSONL_ReadsBackupsAndSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scalars.jsonl")
	backup := filepath.Join(dir, "scalars-2026-01-01T00-00-00.000.jsonl")
	require.NoError(t, os.WriteFile(backup, []byte(
		`{"name":"x","prefix":"p","value":1,"time":"2026-01-01T00:00:00Z"}`+"\nnot json\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(
		`{"name":"x","prefix":"p","value":2,"time":"2026-01-02T00:00:00Z"}`+"\n"), 0o644))

	recs, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1.0, recs[0].Value)
	assert.Equal(t, 2.0, recs[1].Value)
}

func TestJSONL_Registered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reg.jsonl")
	reg := newRegistry(t, "--max_backups", "2")
	l, err := corerunlog.Get(context.Background(), reg, map[string]any{
		"name":   "JSONLLogger",
		"kwargs": map[string]any{"path": path},
	}, "")
	require.NoError(t, err)
	require.NoError(t, l.LogScalar("a", 3, ""))
	require.NoError(t, l.Close())

	j, ok := l.(*JSONL)
	require.True(t, ok)
	assert.Equal(t, 2, j.out.MaxBackups)

	recs, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Key())

	_, err = NewJSONL(JSONLConfig{})
	assert.Error(t, err)
}
