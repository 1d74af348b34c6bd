package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	corerunlog "github.com/kilianp07/hive/core/runlog"
	"github.com/kilianp07/hive/infra/report"
	"github.com/kilianp07/hive/infra/runlog"
)

func newPlotCmd() *cobra.Command {
	var (
		sqlitePath string
		jsonlPath  string
		out        string
		title      string
		keys       []string
	)
	c := &cobra.Command{
		Use:   "plot",
		Short: "Render scalars written by SQLiteLogger or JSONLLogger as HTML charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecords(cmd, sqlitePath, jsonlPath)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Render(f, title, report.Group(records), keys); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	c.Flags().StringVar(&sqlitePath, "sqlite", "", "database written by SQLiteLogger")
	c.Flags().StringVar(&jsonlPath, "jsonl", "", "file written by JSONLLogger")
	c.Flags().StringVarP(&out, "out", "o", "report.html", "output file")
	c.Flags().StringVar(&title, "title", "hive", "chart title")
	c.Flags().StringSliceVarP(&keys, "key", "k", nil, "series to plot as prefix/name, all when empty")
	c.MarkFlagsMutuallyExclusive("sqlite", "jsonl")
	c.MarkFlagsOneRequired("sqlite", "jsonl")
	return c
}

func readRecords(cmd *cobra.Command, sqlitePath, jsonlPath string) ([]corerunlog.Record, error) {
	if jsonlPath != "" {
		return runlog.ReadJSONL(jsonlPath)
	}
	if _, err := os.Stat(sqlitePath); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	db, err := runlog.NewSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return db.Records(cmd.Context())
}
