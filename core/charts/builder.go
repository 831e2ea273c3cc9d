package charts

import (
	"encoding/json"
	"sort"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

const (
	Credit        = "The Shift Dataportal"
	CreditURL     = "https://theshiftproject.org/"
	rankingLimit  = 9
	yearMillisecs = int64(365 * 24 * 3600 * 1000)
	pieLabel      = "<b>{point.name}</b>: {point.percentage:.1f} %"
)

// Build derives the chart configuration for in. The result never depends on
// a previously built configuration.
func Build(in Input) Options {
	switch in.ChartType {
	case dataset.ChartStacked:
		return buildArea(in, "normal")
	case dataset.ChartStackedPercent:
		return buildArea(in, "percent")
	case dataset.ChartLine:
		return buildLine(in)
	case dataset.ChartPie:
		return buildPie(in)
	case dataset.ChartRanking:
		return buildRanking(in)
	case dataset.ChartCustom:
		return buildCustom(in)
	default:
		return buildLine(in)
	}
}

func base(in Input) Options {
	return Options{
		Title:     Title{Text: TruncateTitle(in.Title), Align: "left"},
		Legend:    Legend{Enabled: true, Align: "left"},
		Credits:   Credits{Text: Credit, Href: CreditURL},
		Exporting: Exporting{Enabled: false, Filename: in.Title + " (in " + in.Unit + ")"},
		Tooltip: Tooltip{
			Enabled:      true,
			Shared:       true,
			UseHTML:      true,
			HeaderFormat: "<b>{point.key:%Y}</b>",
			PointFormat:  `<br/><span style="color:{point.color}">&#9679;</span> {series.name}: {point.label}`,
		},
		src: in,
	}
}

func buildArea(in Input, stacking string) Options {
	o := base(in)
	o.Chart = Chart{Type: "areaspline"}
	o.PlotOptions = &PlotOptions{Areaspline: &AreaOptions{
		Stacking:    stacking,
		LineWidth:   1.5,
		FillOpacity: 0.6,
		Marker:      Marker{Enabled: false},
	}}
	o.YAxis = &YAxis{Min: float(0), Title: AxisTitle{Text: in.Unit}}
	if stacking == "percent" {
		o.PlotOptions.Areaspline.LineWidth = 1
		o.YAxis.Max = float(100)
		o.YAxis.Title.Text = "%"
	}
	o.XAxis = timeAxis(in)
	o.Series = timeSeries(in)
	return o
}

func buildLine(in Input) Options {
	o := base(in)
	o.Chart = Chart{Type: "spline"}
	o.PlotOptions = &PlotOptions{Spline: &SplineOptions{
		ConnectNulls: true,
		LineWidth:    1.5,
		Marker:       Marker{Enabled: false},
	}}
	o.YAxis = &YAxis{SoftMin: float(0), Title: AxisTitle{Text: in.Unit}}
	if in.Unit == "%" {
		o.YAxis.Max = float(100)
	}
	o.XAxis = timeAxis(in)
	o.Series = timeSeries(in)
	return o
}

func buildPie(in Input) Options {
	o := base(in)
	o.Chart = Chart{Type: "pie"}
	o.Tooltip = Tooltip{Enabled: false}
	o.PlotOptions = &PlotOptions{Pie: &PieOptions{
		AllowPointSelect: true,
		Cursor:           "pointer",
		InnerSize:        "50%",
		BorderWidth:      1,
		DataLabels:       &DataLabels{Enabled: true, Format: pieLabel},
	}}
	o.YAxis = &YAxis{Title: AxisTitle{Text: in.Unit}}
	o.XAxis = &XAxis{Type: "category", Visible: false, Categories: append([]string(nil), in.Categories...)}
	idx := snapshotIndex(in)
	points := make([]Point, 0, len(in.Series))
	for _, s := range in.Series {
		p := Point{Name: s.Name, Y: s.ValueAt(idx), Color: s.Color}
		if p.Y != nil {
			p.Label = FormatTooltipValue(*p.Y, in.Unit)
		}
		points = append(points, p)
	}
	o.Series = []Series{{
		Name:        "Pie",
		DataLabels:  &DataLabels{Enabled: true, Format: pieLabel},
		DataSorting: &DataSorting{Enabled: false},
		Data:        points,
	}}
	return o
}

func buildRanking(in Input) Options {
	o := base(in)
	o.Chart = Chart{Type: "bar"}
	o.Legend = Legend{Enabled: false}
	o.Tooltip = Tooltip{Enabled: false}
	o.YAxis = nil
	o.XAxis = &XAxis{Type: "category", Visible: false, Min: float(0), Max: float(10)}
	idx := snapshotIndex(in)
	points := make([]Point, 0, len(in.Series))
	for _, s := range in.Series {
		p := Point{
			Name:        s.Name,
			Y:           s.ValueAt(idx),
			Color:       RGBA(s.Color, 0.4),
			BorderColor: s.Color,
		}
		if p.Y != nil {
			p.Label = FormatTooltipValue(*p.Y, in.Unit)
		}
		points = append(points, p)
	}
	sortPointsDesc(points)
	if len(points) > rankingLimit {
		points = points[:rankingLimit]
	}
	o.Series = []Series{{
		PointWidth:     25,
		MinPointLength: 40,
		DataSorting:    &DataSorting{Enabled: true, SortKey: "y"},
		DataLabels: &DataLabels{
			Enabled: true,
			Inside:  true,
			Align:   "left",
			Format:  "{point.name}<br/>{point.y:.1f} " + in.Unit,
		},
		Data: points,
	}}
	return o
}

func buildCustom(in Input) Options {
	o := Options{src: in}
	if len(in.Custom) == 0 || !json.Valid(in.Custom) {
		o.raw = json.RawMessage("{}")
		return o
	}
	o.raw = append(json.RawMessage(nil), in.Custom...)
	return o
}

func timeAxis(in Input) *XAxis {
	axis := &XAxis{Type: "datetime", Visible: true, TickInterval: 5 * yearMillisecs}
	minYear, maxYear := in.YearRange.Min, in.YearRange.Max
	if minYear == 0 && len(in.Categories) > 0 {
		if ms, ok := yearMillis(in.Categories[0]); ok {
			axis.Min = float(float64(ms))
		}
	} else if minYear != 0 {
		axis.Min = float(float64(millisOfYear(minYear)))
	}
	if maxYear == 0 && len(in.Categories) > 0 {
		if ms, ok := yearMillis(in.Categories[len(in.Categories)-1]); ok {
			axis.Max = float(float64(ms))
		}
	} else if maxYear != 0 {
		axis.Max = float(float64(millisOfYear(maxYear)))
	}
	return axis
}

func timeSeries(in Input) []Series {
	out := make([]Series, 0, len(in.Series))
	for _, s := range in.Series {
		points := make([]Point, 0, len(in.Categories))
		for i, category := range in.Categories {
			p := Point{Y: s.ValueAt(i)}
			if ms, ok := yearMillis(category); ok {
				x := ms
				p.X = &x
			} else {
				p.Name = category
			}
			if p.Y != nil {
				p.Label = FormatTooltipValue(*p.Y, in.Unit)
			}
			points = append(points, p)
		}
		out = append(out, Series{
			Name:       s.Name,
			Color:      s.Color,
			DashStyle:  s.DashStyle,
			PointRange: yearMillisecs,
			DataLabels: &DataLabels{Enabled: false},
			Data:       points,
		})
	}
	return out
}

// snapshotIndex picks the category shown by pie and ranking charts: the one
// closest to the end of the range, or the last one when the range is open.
func snapshotIndex(in Input) int {
	if in.YearRange.Max == 0 {
		if len(in.Categories) == 0 {
			return 0
		}
		return len(in.Categories) - 1
	}
	return ClosestCategoryIndex(in.Categories, in.YearRange.Max)
}

// sortPointsDesc orders by value, missing values last, keeping input order
// between equals.
func sortPointsDesc(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].Y, points[j].Y
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
}
