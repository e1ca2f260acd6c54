package dashboard

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/engine"
	"github.com/KaramelBytes/salesdash/internal/report"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Theme selects the chart palette.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme maps user input onto a theme, defaulting to Light.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

func (t Theme) echarts() string {
	if t == Dark {
		return "dark"
	}
	return "white"
}

// Options controls page rendering.
type Options struct {
	Theme Theme
	// AssetsHost overrides the echarts CDN, e.g. for offline use.
	AssetsHost string
}

const (
	pageTitle = "Vehicle Sales Dashboard"
	noData    = "No data available for the selected filters."
	width     = "100%"
	height    = "480px"
)

var heatColors = []string{"#313695", "#4575b4", "#74add1", "#e0f3f8", "#fee090", "#f46d43", "#a50026"}

// Render writes the full dashboard page for snap.
func Render(w io.Writer, snap *engine.Snapshot, opt Options) error {
	page := NewPage(snap, opt)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// NewPage lays out one chart per aggregate of snap.
func NewPage(snap *engine.Snapshot, opt Options) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	if opt.AssetsHost != "" {
		page.SetAssetsHost(opt.AssetsHost)
	}
	a := snap.Aggregates
	page.AddCharts(
		salesTrend(snap, opt),
		rankingBar("Total Price by Model", "price", a.PriceByModel, opt),
		donut("Sales by Region", a.SalesByRegion, opt),
		donut("Sales by Transmission", a.SalesByTransmission, opt),
		donut("Sales by Color", a.SalesByColor, opt),
		correlationHeatmap(a.CorrelationMatrix, opt),
		yoyBar(a.YoYGrowth, opt),
		regionMap(a.SalesByRegion, opt),
	)
	return page
}

func initOpts(opt Options) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:  pageTitle,
		Theme:      opt.Theme.echarts(),
		Width:      width,
		Height:     height,
		AssetsHost: opt.AssetsHost,
	})
}

func placeholder(title string, opt Options) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: noData}),
	)
	return bar
}

func headline(snap *engine.Snapshot) string {
	s := fmt.Sprintf("Total Sales: %s | Total Value: %s USD | Rows: %d of %d",
		report.FormatLargeNumber(snap.TotalSales), report.FormatLargeNumber(snap.TotalValue), snap.Rows, snap.TotalRows)
	if l := snap.Aggregates.Leaders; l != nil {
		s += fmt.Sprintf(" | Top model: %s | Top region: %s | Top fuel: %s", l.Model, l.Region, l.FuelType)
	}
	return s
}

// salesTrend draws one line per model across years.
func salesTrend(snap *engine.Snapshot, opt Options) components.Charter {
	const title = "Sales Trends by Model Over Time"
	res := snap.Aggregates.SalesByYearModel
	if res.Empty {
		p := placeholder(title, opt)
		p.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title, Subtitle: headline(snap) + "\n" + noData}))
		return p
	}
	var years, models []string
	seenYear := map[string]bool{}
	seenModel := map[string]bool{}
	for _, e := range res.Entries {
		if !seenYear[e.Key] {
			seenYear[e.Key] = true
			years = append(years, e.Key)
		}
		if !seenModel[e.Group] {
			seenModel[e.Group] = true
			models = append(models, e.Group)
		}
	}
	sort.Strings(models)

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: headline(snap)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sales Volume"}),
	)
	line.SetXAxis(years)
	for _, m := range models {
		data := make([]opts.LineData, len(years))
		for i, y := range years {
			if e, ok := res.Lookup(y, m); ok {
				data[i] = opts.LineData{Value: e.Value}
			} else {
				data[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(m, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	return line
}

func rankingBar(title, series string, res engine.Result, opt Options) components.Charter {
	if res.Empty {
		return placeholder(title, opt)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	data := make([]opts.BarData, len(res.Entries))
	for i, e := range res.Entries {
		data[i] = opts.BarData{Value: e.Value}
	}
	bar.SetXAxis(res.Keys()).AddSeries(series, data)
	return bar
}

func donut(title string, res engine.Result, opt Options) components.Charter {
	if res.Empty {
		return placeholder(title, opt)
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Bottom: "0"}),
	)
	data := make([]opts.PieData, len(res.Entries))
	for i, e := range res.Entries {
		data[i] = opts.PieData{Name: e.Key, Value: e.Value}
	}
	pie.AddSeries("sales", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"30%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

func correlationHeatmap(res engine.Result, opt Options) components.Charter {
	const title = "Correlation Between Numeric Features"
	if res.Empty {
		return placeholder(title, opt)
	}
	labels := make([]string, len(dataset.Metrics))
	for i, m := range dataset.Metrics {
		labels[i] = m.Column().String()
	}
	data := make([]opts.HeatMapData, 0, len(res.Entries))
	for i, a := range dataset.Metrics {
		for j, b := range dataset.Metrics {
			e, ok := res.Lookup(a.String(), b.String())
			if !ok {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, round2(e.Value)}})
		}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: labels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(labels).AddSeries("pearson r", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

func yoyBar(res engine.Result, opt Options) components.Charter {
	const title = "Year-over-Year Growth in Sales Volume (%)"
	if res.Empty || len(res.Entries) < 2 {
		p := placeholder(title, opt)
		p.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Not enough data to calculate growth rates."}))
		return p
	}
	data := make([]opts.BarData, len(res.Entries))
	for i, e := range res.Entries {
		if e.Valid {
			data[i] = opts.BarData{Value: round2(e.Value)}
		} else {
			data[i] = opts.BarData{Value: "-"}
		}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(res.Keys()).AddSeries("growth", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

func regionMap(res engine.Result, opt Options) components.Charter {
	const title = "Sales by Region (World Map)"
	if res.Empty {
		return placeholder(title, opt)
	}
	data := RegionMapData(res)
	maxV := 0.0
	for _, d := range data {
		if v, ok := d.Value.(float64); ok && v > maxV {
			maxV = v
		}
	}
	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		initOpts(opt),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxV),
			InRange:    &opts.VisualMapInRange{Color: []string{"#e0f3f8", "#74add1", "#313695"}},
		}),
	)
	m.AddSeries("sales", data)
	return m
}

// RegionMapData spreads each region's total onto the countries of the world map that
// belong to it. Regions the map does not know are drawn under their own name.
func RegionMapData(res engine.Result) []opts.MapData {
	var out []opts.MapData
	for _, e := range res.Entries {
		countries, ok := regionCountries[strings.ToLower(e.Key)]
		if !ok {
			out = append(out, opts.MapData{Name: e.Key, Value: e.Value})
			continue
		}
		for _, c := range countries {
			out = append(out, opts.MapData{Name: c, Value: e.Value})
		}
	}
	return out
}

var regionCountries = map[string][]string{
	"africa":        {"Algeria", "Egypt", "Ethiopia", "Kenya", "Morocco", "Nigeria", "South Africa"},
	"asia":          {"China", "India", "Indonesia", "Japan", "Korea", "Malaysia", "Thailand", "Vietnam"},
	"europe":        {"Austria", "Belgium", "France", "Germany", "Italy", "Netherlands", "Poland", "Spain", "Sweden", "United Kingdom"},
	"middle east":   {"Iran", "Iraq", "Israel", "Jordan", "Kuwait", "Oman", "Qatar", "Saudi Arabia", "United Arab Emirates"},
	"north america": {"Canada", "Mexico", "United States"},
	"south america": {"Argentina", "Brazil", "Chile", "Colombia", "Peru", "Venezuela"},
	"oceania":       {"Australia", "New Zealand"},
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
