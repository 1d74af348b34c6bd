package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hive/app"
	"github.com/kilianp07/hive/config"
	"github.com/kilianp07/hive/infra/logger"
)

// NewRootCmd builds the hive command tree. Flags not declared by a command
// are left to the registry: every resolution reads its overrides from
// overrides, the raw argument list.
func NewRootCmd(overrides []string) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "hive",
		Short:         "Build and run experiments described by configuration fragments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file (yaml, json or toml)")

	load := func() (*config.Config, *app.Service, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, nil, err
		}
		svc, err := app.New(cfg, overrides)
		if err != nil {
			return nil, nil, err
		}
		return cfg, svc, nil
	}

	root.AddCommand(newBuildCmd(load), newRunCmd(load), newFamiliesCmd(), newPlotCmd())
	return root
}

type loader func() (*config.Config, *app.Service, error)

// acceptOverrides lets a command receive registry overrides it does not
// declare itself.
func acceptOverrides(c *cobra.Command) *cobra.Command {
	c.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	c.Args = cobra.ArbitraryArgs
	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

// ExecuteArgs runs the CLI on args.
func ExecuteArgs(args []string) error {
	root := NewRootCmd(args)
	root.SetArgs(args)
	return root.Execute()
}

// Execute runs the CLI on the process arguments.
func Execute() error { return ExecuteArgs(os.Args[1:]) }
