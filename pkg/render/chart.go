package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart renders a zoomable scatter page of the sites, one series per layer.
func Chart(in Input) ([]byte, error) {
	cfg := in.config()
	sites := in.sites()
	names, groups := series(cfg, sites)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: in.title(), Width: "1200px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    in.title(),
			Subtitle: fmt.Sprintf("sites=%d anchors=%d shifted=%d", len(sites), in.Stats.Anchors, in.Stats.Shifted()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}, opts.DataZoom{Type: "inside", YAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", NameLocation: "middle", NameGap: 40, Scale: opts.Bool(true)}),
	)

	for _, name := range names {
		data := make([]opts.ScatterData, 0, len(groups[name]))
		for _, i := range groups[name] {
			s := sites[i]
			data = append(data, opts.ScatterData{
				Name:  s.Label(),
				Value: []interface{}{s.Coordinates.Longitude, s.Coordinates.Latitude, s.Technology, s.Power},
			})
		}
		scatter.AddSeries(name, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesHex(cfg, name)}),
		)
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
