// Package report renders logged run scalars as HTML charts.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	corerunlog "github.com/kilianp07/hive/core/runlog"
)

// Group splits records by Key, keeping the logging order within each series.
func Group(records []corerunlog.Record) map[string][]float64 {
	out := make(map[string][]float64)
	for _, r := range records {
		out[r.Key()] = append(out[r.Key()], r.Value)
	}
	return out
}

// Keys returns the keys of series in sorted order.
func Keys(series map[string][]float64) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render writes one line chart per key to w. Every point is plotted against
// its index in the series. Unknown keys are an error.
func Render(w io.Writer, title string, series map[string][]float64, keys []string) error {
	if len(keys) == 0 {
		keys = Keys(series)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no series to plot")
	}
	page := components.NewPage()
	page.PageTitle = title
	for _, key := range keys {
		values, ok := series[key]
		if !ok {
			return fmt.Errorf("no series named %q", key)
		}
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: title, Subtitle: key}),
			charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
			charts.WithYAxisOpts(opts.YAxis{Name: key}),
		)
		xAxis := make([]string, len(values))
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			xAxis[i] = strconv.Itoa(i)
			data[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(xAxis).AddSeries(key, data)
		page.AddCharts(line)
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
