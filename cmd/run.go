package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hive/app"
)

func newRunCmd(load loader) *cobra.Command {
	return acceptOverrides(&cobra.Command{
		Use:   "run [--<prefix>.<param> value ...]",
		Short: "Resolve the configured experiment and run its rollout loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, svc, err := load()
			if err != nil {
				return err
			}
			defer closeService(svc)
			defer svc.Monitor().Recover()
			svc.ServeMetrics(ctx)

			exp, sum, err := svc.BuildAndRun(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				RunID string `json:"run_id"`
				Name  string `json:"name"`
				*app.Summary
			}{exp.RunID, exp.Name, sum})
		},
	})
}
