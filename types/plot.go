package types

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/vacuum-world/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSeries saves a PNG line plot with one line per named series
func PlotSeries(file, title, xLabel, yLabel string, names []string, series [][]float64) error {
	if len(names) != len(series) {
		return fmt.Errorf("plot %s: %d names for %d series", title, len(names), len(series))
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for i := 0; i < len(names); i++ {
		points := make(plotter.XYs, len(series[i]))
		for j, v := range series[i] {
			points[j] = plotter.XY{
				X: float64(j + 1),
				Y: v,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	if err := util.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, file)
}

// ChartSeries renders the series as an HTML line chart
func ChartSeries(file, title string, names []string, series [][]float64) error {
	if len(names) != len(series) {
		return fmt.Errorf("chart %s: %d names for %d series", title, len(names), len(series))
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	numSteps := 0
	for _, s := range series {
		if len(s) > numSteps {
			numSteps = len(s)
		}
	}
	steps := make([]string, numSteps)
	for i := 0; i < numSteps; i++ {
		steps[i] = fmt.Sprintf("%d", i+1)
	}
	line.SetXAxis(steps)
	for i, name := range names {
		items := make([]opts.LineData, 0, len(series[i]))
		for _, v := range series[i] {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(name, items)
	}

	if err := util.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}
