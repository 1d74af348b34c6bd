package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `run:
  name: chain
  steps: 200
  seed: 3
environment:
  name: ChainEnv
  kwargs:
    length: 6
agent:
  name: DQNAgent
  kwargs:
    discount_rate: 0.9
    representation_net:
      name: MLPNetwork
      kwargs:
        hidden_units: [16, 16]
loggers:
  - name: ChompLogger
    kwargs: {}
logging:
  level: debug
metrics:
  prometheus_enabled: true
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, "chain", cfg.Run.Name)
	assert.Equal(t, 200, cfg.Run.Steps)
	assert.Equal(t, int64(3), cfg.Run.Seed)
	assert.Equal(t, "ChainEnv", cfg.Environment["name"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9102", cfg.Metrics.PrometheusPort)

	kwargs, ok := cfg.Agent["kwargs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.9, kwargs["discount_rate"])

	loggers, ok := cfg.Loggers.([]any)
	require.True(t, ok)
	assert.Len(t, loggers, 1)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HIVE_RUN__STEPS", "50")
	t.Setenv("HIVE_LOGGING__LEVEL", "warn")

	cfg, err := Load(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Run.Steps)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_JSONDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "environment": {"name": "BanditEnv", "kwargs": {"arms": 3}},
  "agent": {"name": "RandomAgent", "kwargs": {}}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hive", cfg.Run.Name)
	assert.Equal(t, 1000, cfg.Run.Steps)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.PrometheusPort)
	assert.Nil(t, cfg.Loggers)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[run]
steps = 10

[environment]
name = "ChainEnv"
[environment.kwargs]
slip = 0.0

[agent]
name = "RandomAgent"
[agent.kwargs]
seed = 4

[loggers]
name = "NullLogger"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Run.Steps)
	assert.Equal(t, "ChainEnv", cfg.Environment["name"])
	loggers, ok := cfg.Loggers.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NullLogger", loggers["name"])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unsupported", "config.ini", "a=1"},
		{"missing agent", "config.yaml", "environment: {name: ChainEnv, kwargs: {}}\n"},
		{"missing environment", "config.yaml", "agent: {name: RandomAgent, kwargs: {}}\n"},
		{"bad level", "config.yaml", "environment: {name: E}\nagent: {name: A}\nlogging: {level: loud}\n"},
		{"bad textfile", "config.yaml", "environment: {name: E}\nagent: {name: A}\nmetrics: {textfile: out.txt}\n"},
		{"negative steps", "config.yaml", "run: {steps: -1}\nenvironment: {name: E}\nagent: {name: A}\n"},
		{"bad sample rate", "config.yaml", "environment: {name: E}\nagent: {name: A}\nsentry: {traces_sample_rate: 2}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTOMLParser_RoundTrip(t *testing.T) {
	p := TOML()
	b, err := p.Marshal(map[string]interface{}{"run": map[string]interface{}{"steps": 5}})
	require.NoError(t, err)
	out, err := p.Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out["run"].(map[string]interface{})["steps"])
}
