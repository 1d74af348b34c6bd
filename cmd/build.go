package cmd

import (
	"github.com/spf13/cobra"
)

func newBuildCmd(load loader) *cobra.Command {
	return acceptOverrides(&cobra.Command{
		Use:   "build [--<prefix>.<param> value ...]",
		Short: "Resolve the configured object graph and print its description",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := load()
			if err != nil {
				return err
			}
			defer closeService(svc)
			exp, err := svc.Build(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = exp.Close() }()
			return writeJSON(cmd.OutOrStdout(), exp.Describe(svc.Trace()))
		},
	})
}
