package web

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/pulseboard/internal/domain/types"
)

// Colors of the login outcome and heart rate charts.
const (
	colorSuccess     = "rgba(25, 135, 84, 0.8)"
	colorFailed      = "rgba(220, 53, 69, 0.8)"
	colorHeartRate   = "rgba(102, 126, 234, 0.8)"
	chartTheme       = "macarons"
	doughnutInner    = "40%"
	doughnutOuter    = "70%"
	axisLabelRotate  = 45
	yAxisNameGap     = 50
	chartWidthPixels = "520px"
	bpmAxisFormatter = "{value} bpm"
)

type renderer interface {
	Render(w io.Writer) error
}

// chart is one live go-echarts instance bound to a slot.
type chart struct {
	view      *View
	slot      types.ChartSlot
	spec      types.ChartSpec
	destroyed atomic.Bool

	mu       sync.Mutex
	renderer renderer
}

// Destroy detaches the instance from its slot.
func (c *chart) Destroy() {
	if !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	c.view.release(c)
}

func (c *chart) html() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf bytes.Buffer
	if err := c.renderer.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildRenderer(spec types.ChartSpec) renderer {
	if spec.Kind == types.KindDoughnut {
		return buildDoughnut(spec)
	}
	return buildBar(spec)
}

func buildDoughnut(spec types.ChartSpec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme, Width: chartWidthPixels}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}: {c}"}),
	)

	palette := []string{colorSuccess, colorFailed}
	items := make([]opts.PieData, 0, len(spec.Values))
	for i, v := range spec.Values {
		item := opts.PieData{Value: v}
		if i < len(spec.Labels) {
			item.Name = spec.Labels[i]
		}
		if i < len(palette) {
			item.ItemStyle = &opts.ItemStyle{Color: palette[i]}
		}
		items = append(items, item)
	}

	pie.AddSeries(spec.Title, items).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{doughnutInner, doughnutOuter}}),
		)
	return pie
}

func buildBar(spec types.ChartSpec) *charts.Bar {
	axisLabel := &opts.AxisLabel{}
	if spec.Unit == "bpm" {
		axisLabel.Formatter = bpmAxisFormatter
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme, Width: chartWidthPixels}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "top"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: axisLabelRotate},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         spec.SeriesLabel,
			NameLocation: "middle",
			NameGap:      yAxisNameGap,
			AxisLabel:    axisLabel,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	bar.SetXAxis(spec.Labels)

	items := make([]opts.BarData, 0, len(spec.Values))
	for _, v := range spec.Values {
		items = append(items, opts.BarData{Value: v})
	}
	bar.AddSeries(spec.SeriesLabel, items,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHeartRate}),
	)
	return bar
}
