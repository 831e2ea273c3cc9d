package charts

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

// ScreenshotClass marks the element captured by the screenshot service.
const ScreenshotClass = "screenshot"

var containerPattern = regexp.MustCompile(`<div class="container">`)

type renderer interface {
	Render(w io.Writer) error
}

// RenderEmbed writes a standalone html page drawing o with echarts. The
// chart container carries the screenshot marker class.
func RenderEmbed(w io.Writer, o Options, height string) error {
	if strings.TrimSpace(height) == "" {
		height = "75rem"
	}
	in := o.Source()
	initOpts := opts.Initialization{
		PageTitle: TruncateTitle(in.Title),
		Width:     "100%",
		Height:    height,
	}
	var chart renderer
	switch in.ChartType {
	case dataset.ChartPie:
		chart = embedPie(in, initOpts)
	case dataset.ChartRanking:
		chart = embedRanking(in, initOpts)
	default:
		chart = embedLine(in, initOpts)
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return err
	}
	page := containerPattern.ReplaceAll(buf.Bytes(), []byte(`<div class="container `+ScreenshotClass+`">`))
	_, err := w.Write(page)
	return err
}

func embedLine(in Input, initOpts opts.Initialization) *echarts.Line {
	line := echarts.NewLine()
	yAxis := opts.YAxis{Name: in.Unit, Min: 0}
	stack := ""
	values := in.Series
	switch in.ChartType {
	case dataset.ChartStacked:
		stack = "total"
	case dataset.ChartStackedPercent:
		stack = "total"
		values = percentages(in.Series, len(in.Categories))
		yAxis = opts.YAxis{Name: "%", Min: 0, Max: 100}
	default:
		if in.Unit == "%" {
			yAxis.Max = 100
		}
	}
	line.SetGlobalOptions(
		echarts.WithInitializationOpts(initOpts),
		echarts.WithTitleOpts(opts.Title{Title: TruncateTitle(in.Title)}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		echarts.WithLegendOpts(opts.Legend{Show: true}),
		echarts.WithXAxisOpts(opts.XAxis{Type: "category", Show: true}),
		echarts.WithYAxisOpts(yAxis),
	)
	line.SetXAxis(in.Categories)
	for _, s := range values {
		data := make([]opts.LineData, 0, len(in.Categories))
		for i := range in.Categories {
			var v interface{}
			if p := s.ValueAt(i); p != nil {
				v = *p
			}
			data = append(data, opts.LineData{Value: v})
		}
		seriesOpts := []echarts.SeriesOpts{
			echarts.WithLineChartOpts(opts.LineChart{Smooth: true, Stack: stack, ConnectNulls: stack == ""}),
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		}
		if stack != "" {
			seriesOpts = append(seriesOpts, echarts.WithAreaStyleOpts(opts.AreaStyle{Color: s.Color, Opacity: 0.6}))
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}
	return line
}

func embedPie(in Input, initOpts opts.Initialization) *echarts.Pie {
	pie := echarts.NewPie()
	pie.SetGlobalOptions(
		echarts.WithInitializationOpts(initOpts),
		echarts.WithTitleOpts(opts.Title{Title: TruncateTitle(in.Title)}),
		echarts.WithLegendOpts(opts.Legend{Show: true}),
	)
	idx := snapshotIndex(in)
	data := make([]opts.PieData, 0, len(in.Series))
	for _, s := range in.Series {
		v := s.ValueAt(idx)
		if v == nil {
			continue
		}
		data = append(data, opts.PieData{Name: s.Name, Value: *v, ItemStyle: &opts.ItemStyle{Color: s.Color}})
	}
	pie.AddSeries("Pie", data, echarts.WithPieChartOpts(opts.PieChart{Radius: []string{"50%", "75%"}}))
	return pie
}

func embedRanking(in Input, initOpts opts.Initialization) *echarts.Bar {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithInitializationOpts(initOpts),
		echarts.WithTitleOpts(opts.Title{Title: TruncateTitle(in.Title)}),
		echarts.WithLegendOpts(opts.Legend{Show: false}),
		echarts.WithYAxisOpts(opts.YAxis{Name: in.Unit}),
	)
	ranked := Build(Input{ChartType: dataset.ChartRanking, Unit: in.Unit, YearRange: in.YearRange, Categories: in.Categories, Series: in.Series})
	var names []string
	var data []opts.BarData
	if len(ranked.Series) > 0 {
		points := ranked.Series[0].Data
		// bars are drawn bottom up once the axes are swapped
		for i := len(points) - 1; i >= 0; i-- {
			p := points[i]
			if p.Y == nil {
				continue
			}
			names = append(names, p.Name)
			data = append(data, opts.BarData{
				Name:      p.Name,
				Value:     *p.Y,
				ItemStyle: &opts.ItemStyle{Color: p.Color, BorderColor: p.BorderColor},
			})
		}
	}
	bar.SetXAxis(names).AddSeries(in.Unit, data).XYReversal()
	return bar
}

// percentages rescales every category so the series sum to 100.
func percentages(series []dataset.Series, n int) []dataset.Series {
	totals := make([]float64, n)
	for _, s := range series {
		for i := 0; i < n; i++ {
			if v := s.ValueAt(i); v != nil {
				totals[i] += *v
			}
		}
	}
	out := make([]dataset.Series, 0, len(series))
	for _, s := range series {
		scaled := s
		scaled.Data = make([]*float64, n)
		for i := 0; i < n; i++ {
			if v := s.ValueAt(i); v != nil && totals[i] != 0 {
				scaled.Data[i] = dataset.Float(*v / totals[i] * 100)
			}
		}
		out = append(out, scaled)
	}
	return out
}
