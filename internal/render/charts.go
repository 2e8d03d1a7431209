package render

import (
	"fmt"
	"io"
	"strings"

	"epireport/domain/core"
	"epireport/domain/table"
	"epireport/internal/coerce"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOptions sizes and labels the time-trend figure
type ChartOptions struct {
	Title        string
	SeriesName   string
	Width        string
	Height       string
	ExcludeToken string
}

// DefaultChartOptions matches the figure the report page embeds
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Title:        "时间分布趋势",
		SeriesName:   "发病数",
		Width:        "900px",
		Height:       "500px",
		ExcludeToken: "合计",
	}
}

// TimeTrend renders the monthly incidence line chart as a standalone
// HTML document. Labels come from the first column, values from the
// second; aggregate rows are dropped so the total never dwarfs the
// monthly series.
func TimeTrend(w io.Writer, t *table.Table, o ChartOptions) error {
	if t == nil {
		return core.NewMissingTableError(string(table.RoleTime))
	}
	if t.ColumnCount() < 2 {
		return fmt.Errorf("time table %s needs a label and a value column", t.Name)
	}

	var labels []string
	var points []opts.LineData
	for i := range t.Rows {
		label := strings.TrimSpace(t.Cell(i, 0))
		if label == "" || strings.Contains(label, o.ExcludeToken) {
			continue
		}
		labels = append(labels, label)
		points = append(points, opts.LineData{Value: coerce.Number(t.Cell(i, 1))})
	}
	if len(labels) == 0 {
		return fmt.Errorf("time table %s has no plottable rows", t.Name)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
	)
	line.SetXAxis(labels).AddSeries(o.SeriesName, points,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render time trend chart: %w", err)
	}
	return nil
}
