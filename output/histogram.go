package output

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// PlotHistogram renders an interactive bar chart of counts[k] per key k.
// Empty buckets are kept on the axis so gaps in the key range stay visible.
func PlotHistogram(counts []int, filename string) error {
	if len(counts) == 0 {
		return fmt.Errorf("no keys to plot")
	}

	bars := make([]opts.BarData, len(counts))
	var maxCount int
	for k, c := range counts {
		if c > maxCount {
			maxCount = c
		}
		bars[k] = opts.BarData{
			Name:  fmt.Sprintf("key %d", k),
			Value: c,
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Key Histogram",
			Width:           "180vh",
			Height:          "100vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Records per Key",
			Subtitle: fmt.Sprintf("%d buckets, largest holds %d records", len(counts), maxCount),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />Count: ' + params.value;
	}`),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Key",
			Type: "category",
			Data: makeRange(0, len(counts)-1),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Count",
			Type: "value",
		}),
	)

	bar.AddSeries("Counts", bars)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(bar)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create histogram file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering histogram: %w", err)
	}
	return nil
}

// makeRange creates an integer slice [lo..hi]
func makeRange(lo, hi int) []int {
	r := make([]int, hi-lo+1)
	for i := range r {
		r[i] = lo + i
	}
	return r
}
