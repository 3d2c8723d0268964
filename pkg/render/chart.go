package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// chartAssetsHost serves the echarts script the page loads.
const chartAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WriteSearchChart writes an HTML bar chart of the order search: one bar per
// score, best first, giving how many orders ended with it.
func WriteSearchChart(w io.Writer, title string, stats ordering.Stats) error {
	labels := make([]string, 0, len(stats.Distribution))
	bars := make([]opts.BarData, 0, len(stats.Distribution))
	for _, b := range stats.Distribution {
		labels = append(labels, fmt.Sprintf("%d routed, cost %d", b.Routed, b.Cost))
		bars = append(bars, opts.BarData{Value: b.Orders})
	}

	subtitle := fmt.Sprintf("%s search: %d/%d orders, mean cost %.1f (sd %.1f)",
		stats.Strategy, stats.Trials, stats.Total, stats.MeanCost, stats.StdDevCost)
	if !stats.Complete {
		subtitle += ", stopped early"
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px", AssetsHost: chartAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "score", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "orders", NameLocation: "middle", NameGap: 40}),
	)
	chart.SetXAxis(labels).
		AddSeries("orders", bars,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: palette[0]}),
		)

	if err := chart.Render(w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render search chart")
	}
	return nil
}
