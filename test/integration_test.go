package test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/hive/cmd"
	infrarunlog "github.com/kilianp07/hive/infra/runlog"
	"github.com/kilianp07/hive/test/util"
)

const chainConfig = `run:
  name: chain-integration
  steps: 300
  episodes: 5
  seed: 1
environment:
  name: ChainEnv
  kwargs:
    length: 4
    slip: 0.1
    max_steps: 30
    seed: 7
agent:
  name: DQNAgent
  kwargs:
    id: dqn
    discount_rate: 0.95
    seed: 3
    representation_net:
      name: MLPNetwork
      kwargs:
        hidden_units: [16]
        activation: tanh
    optimizer_fn:
      name: SGD
      kwargs:
        lr: 0.05
        momentum: 0.5
        lr_schedule:
          name: LinearSchedule
          kwargs:
            init_value: 0.05
            end_value: 0.005
            steps: 200
    epsilon_schedule:
      name: LinearSchedule
      kwargs:
        init_value: 1.0
        end_value: 0.1
        steps: 100
loggers:
  - name: NullLogger
    kwargs: {}
  - name: SQLiteLogger
    kwargs:
      path: DBPATH
logging:
  level: error
metrics:
  textfile: PROMPATH
`

func TestRunCommand_PersistsEpisodes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ignored.db")
	override := filepath.Join(dir, "runs.db")
	prom := filepath.Join(dir, "hive.prom")
	cfg := util.WriteConfig(t, "chain.yaml", chainConfig, map[string]string{"DBPATH": db, "PROMPATH": prom})

	args := []string{"run", "-c", cfg,
		"--loggers.logger_list.1.path", override,
		"--agent.optimizer_fn.lr_schedule.steps", "50",
		"--environment.slip", "0",
	}
	require.NoError(t, cmd.ExecuteArgs(args))

	assert.NoFileExists(t, db)
	store, err := infrarunlog.NewSQLite(override)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	returns, err := store.Series(context.Background(), "episode_return", "run")
	require.NoError(t, err)
	assert.NotEmpty(t, returns)
	assert.LessOrEqual(t, len(returns), 5)

	tdErrors, err := store.Series(context.Background(), "td_error", "dqn")
	require.NoError(t, err)
	assert.NotEmpty(t, tdErrors)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hive_resolutions_total{family="schedule",outcome="ok",variant="LinearSchedule"} 2`)
}

func TestBuildCommand_JSONConfig(t *testing.T) {
	cfg := util.WriteConfig(t, "bandit.json", `{
  "environment": {"name": "BanditEnv", "kwargs": {"arms": 4}},
  "agent": {"name": "RandomAgent", "kwargs": {"id": "rnd"}},
  "logging": {"level": "error"}
}`, nil)

	root := cmd.NewRootCmd([]string{"build", "-c", cfg, "--agent.id", "from-cli"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"build", "-c", cfg, "--agent.id", "from-cli"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"agent_id": "from-cli"`)
	assert.Contains(t, out.String(), `"num_actions": 4`)
}
