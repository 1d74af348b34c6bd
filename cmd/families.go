package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hive/app/plugins"
	"github.com/kilianp07/hive/core/registry"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List registered families, their variants and parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := registry.New()
			if err := plugins.Builtin(reg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, fam := range reg.Families() {
				fmt.Fprintln(out, fam)
				variants, err := reg.Variants(fam)
				if err != nil {
					return err
				}
				for _, v := range variants {
					ctor, _ := reg.Lookup(fam, v)
					fmt.Fprintf(out, "  %s(%s)\n", v, ctor.Params)
				}
			}
			return nil
		},
	}
}
