package charts

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
)

func sampleInput(ct dataset.ChartType, unit string) Input {
	f := dataset.Float
	return Input{
		ChartType:  ct,
		Unit:       unit,
		YearRange:  selection.YearRange{Min: 1990, Max: 2000},
		Title:      "Primary energy Production by source - World, 1990-2000",
		Categories: []string{"1990", "1995", "2000"},
		Series: []dataset.Series{
			{Name: "Oil", Color: "#BC301A", Data: []*float64{f(10), f(12), f(14)}},
			{Name: "Coal", Color: "#4F1008", Data: []*float64{f(20), nil, f(5)}},
			{Name: "Gas", Color: "#FB8888", Data: []*float64{f(1), f(2), f(3)}},
		},
	}
}

func TestLineMaxOnlyForPercent(t *testing.T) {
	pct := Build(sampleInput(dataset.ChartLine, "%"))
	if pct.YAxis == nil || pct.YAxis.Max == nil || *pct.YAxis.Max != 100 {
		t.Fatalf("expected max 100 for %% unit")
	}
	for _, unit := range []string{"Mtoe", "MtCO2", "TWh", ""} {
		o := Build(sampleInput(dataset.ChartLine, unit))
		if o.YAxis == nil || o.YAxis.Max != nil {
			t.Fatalf("%s: expected unset max", unit)
		}
		if o.YAxis.SoftMin == nil || *o.YAxis.SoftMin != 0 {
			t.Fatalf("%s: expected soft min 0", unit)
		}
		if o.PlotOptions == nil || o.PlotOptions.Spline == nil || !o.PlotOptions.Spline.ConnectNulls {
			t.Fatalf("%s: expected spline plot options", unit)
		}
	}
	raw, err := json.Marshal(Build(sampleInput(dataset.ChartLine, "Mtoe")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"max":100`) {
		t.Fatalf("max must be absent from json: %s", raw)
	}
}

func TestStackedBranches(t *testing.T) {
	o := Build(sampleInput(dataset.ChartStacked, "Mtoe"))
	if o.Chart.Type != "areaspline" || o.PlotOptions.Areaspline.Stacking != "normal" {
		t.Fatalf("unexpected stacked options")
	}
	if *o.YAxis.Min != 0 || o.YAxis.Max != nil || o.YAxis.Title.Text != "Mtoe" {
		t.Fatalf("unexpected stacked y axis %+v", o.YAxis)
	}
	if o.XAxis.Type != "datetime" || !o.XAxis.Visible {
		t.Fatalf("unexpected x axis")
	}
	if len(o.Series) != 3 || len(o.Series[1].Data) != 3 || o.Series[1].Data[1].Y != nil {
		t.Fatalf("expected null kept in series data")
	}
	if o.Series[0].Data[0].X == nil || *o.Series[0].Data[0].X != 631152000000 {
		t.Fatalf("expected Date.UTC(1990, 0) x value")
	}
	if !o.Tooltip.Enabled || !o.Tooltip.Shared {
		t.Fatalf("expected shared tooltip")
	}

	p := Build(sampleInput(dataset.ChartStackedPercent, "Mtoe"))
	if p.PlotOptions.Areaspline.Stacking != "percent" || *p.YAxis.Max != 100 || p.YAxis.Title.Text != "%" {
		t.Fatalf("unexpected percent options")
	}
}

func TestPieUsesClosestCategory(t *testing.T) {
	in := sampleInput(dataset.ChartPie, "Mtoe")
	in.YearRange.Max = 1997
	o := Build(in)
	if o.Tooltip.Enabled || o.XAxis.Visible {
		t.Fatalf("pie must hide tooltip and x axis")
	}
	if len(o.Series) != 1 || o.Series[0].Name != "Pie" {
		t.Fatalf("expected a single Pie series")
	}
	data := o.Series[0].Data
	if len(data) != 3 || data[0].Name != "Oil" || *data[0].Y != 12 || data[1].Y != nil {
		t.Fatalf("expected 1995 values, got %+v", data)
	}
	if o.PlotOptions.Pie.InnerSize != "50%" {
		t.Fatalf("expected inner size 50%%")
	}
}

func TestRankingBars(t *testing.T) {
	in := sampleInput(dataset.ChartRanking, "Mtoe")
	f := dataset.Float
	for i := 0; i < 10; i++ {
		in.Series = append(in.Series, dataset.Series{Name: "Extra", Color: "#abc", Data: []*float64{f(0), f(0), f(float64(i))}})
	}
	o := Build(in)
	if o.YAxis != nil || o.Legend.Enabled || o.Tooltip.Enabled {
		t.Fatalf("ranking must unset y axis, legend and tooltip")
	}
	data := o.Series[0].Data
	if len(data) != 9 {
		t.Fatalf("expected 9 bars, got %d", len(data))
	}
	if data[0].Name != "Oil" || *data[0].Y != 14 {
		t.Fatalf("expected largest value first, got %+v", data[0])
	}
	if data[0].Color != "rgba(188,48,26,0.4)" || data[0].BorderColor != "#BC301A" {
		t.Fatalf("unexpected colors %s / %s", data[0].Color, data[0].BorderColor)
	}
	if got := RGBA("#abc", 0.4); got != "rgba(170,187,204,0.4)" {
		t.Fatalf("unexpected shorthand rgba %s", got)
	}
	raw, _ := json.Marshal(o)
	if !strings.Contains(string(raw), `"yAxis":null`) {
		t.Fatalf("expected null y axis in json")
	}
}

func TestBranchesDoNotLeak(t *testing.T) {
	pie := Build(sampleInput(dataset.ChartPie, "Mtoe"))
	line := Build(sampleInput(dataset.ChartLine, "Mtoe"))
	if line.PlotOptions.Pie != nil || !line.Tooltip.Enabled || !line.XAxis.Visible {
		t.Fatalf("line options carry pie settings")
	}
	if pie.PlotOptions.Spline != nil {
		t.Fatalf("pie options carry line settings")
	}
}

func TestCustomPassThrough(t *testing.T) {
	in := sampleInput(dataset.ChartCustom, "Mtoe")
	in.Custom = json.RawMessage(`{"chart":{"type":"column"},"series":[]}`)
	raw, err := json.Marshal(Build(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"chart":{"type":"column"},"series":[]}` {
		t.Fatalf("expected verbatim custom options, got %s", raw)
	}
	in.Custom = nil
	raw, _ = json.Marshal(Build(in))
	if string(raw) != "{}" {
		t.Fatalf("expected empty custom options, got %s", raw)
	}
}

func TestCommonOptions(t *testing.T) {
	in := sampleInput(dataset.ChartStacked, "Mtoe")
	in.Title = strings.Repeat("a", 70)
	o := Build(in)
	if o.Title.Text != strings.Repeat("a", 66)+"..." {
		t.Fatalf("unexpected title %q", o.Title.Text)
	}
	if o.Exporting.Filename != in.Title+" (in Mtoe)" {
		t.Fatalf("unexpected filename %q", o.Exporting.Filename)
	}
	if o.Credits.Text != "The Shift Dataportal" || !o.Legend.Enabled {
		t.Fatalf("unexpected common options")
	}
}

func TestClosestCategoryIndex(t *testing.T) {
	cats := []string{"1990", "1995", "2000"}
	if got := ClosestCategoryIndex(cats, 1997); got != 1 {
		t.Fatalf("expected 1995, got %s", cats[got])
	}
	if got := ClosestCategoryIndex([]string{"1990", "2000"}, 1995); got != 0 {
		t.Fatalf("expected first on tie, got %d", got)
	}
	if got := ClosestCategoryIndex([]string{"a", "b"}, 1995); got != 0 {
		t.Fatalf("expected 0 without numeric categories, got %d", got)
	}
	if got := ClosestCategoryIndex(cats, 2050); got != 2 {
		t.Fatalf("expected last category, got %d", got)
	}
}

func TestFormatTooltipValue(t *testing.T) {
	got := FormatTooltipValue(12345.6, "Mtoe")
	if strings.Contains(got, ",") {
		t.Fatalf("unexpected comma in %q", got)
	}
	if strings.ReplaceAll(got, " ", "") != "12300Mtoe" {
		t.Fatalf("expected three significant digits, got %q", got)
	}
	if got := FormatTooltipValue(1234.567, "Mtoe"); strings.ReplaceAll(got, " ", "") != "1230Mtoe" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatTooltipValue(0.012345, "%"); got != "0.0123 %" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatTooltipValue(1.5, ""); got != "1.50" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTruncateTitle(t *testing.T) {
	title := strings.Repeat("x", 70)
	if got := TruncateTitle(title); got != strings.Repeat("x", 66)+"..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := TruncateTitle("short"); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestRenderEmbedMarksScreenshotElement(t *testing.T) {
	for _, ct := range []dataset.ChartType{dataset.ChartStacked, dataset.ChartStackedPercent, dataset.ChartLine, dataset.ChartPie, dataset.ChartRanking} {
		var buf bytes.Buffer
		if err := RenderEmbed(&buf, Build(sampleInput(ct, "Mtoe")), "40rem"); err != nil {
			t.Fatalf("%s: render: %v", ct, err)
		}
		html := buf.String()
		if !strings.Contains(html, `class="container screenshot"`) {
			t.Fatalf("%s: expected screenshot marker", ct)
		}
		if !strings.Contains(html, "40rem") {
			t.Fatalf("%s: expected chart height", ct)
		}
	}
}

func TestRenderSVGReturnsSVG(t *testing.T) {
	for _, ct := range []dataset.ChartType{dataset.ChartStacked, dataset.ChartRanking} {
		out, err := RenderSVG(Build(sampleInput(ct, "Mtoe")))
		if err != nil {
			t.Fatalf("render svg: %v", err)
		}
		text := string(out)
		if !strings.Contains(text, "<svg") || !strings.Contains(text, "</svg>") {
			t.Fatalf("expected svg output")
		}
		if !strings.Contains(text, "Primary energy") {
			t.Fatalf("expected title in svg")
		}
	}
}
