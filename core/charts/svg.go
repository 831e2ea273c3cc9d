package charts

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

const (
	svgWidth      = 640
	svgHeight     = 320
	paddingTop    = 30
	paddingRight  = 16
	paddingBottom = 52
	paddingLeft   = 52
)

// RenderSVG draws a static snapshot of o without a browser: one polyline
// per series for time series, one bar per series for pie and ranking.
func RenderSVG(o Options) ([]byte, error) {
	in := o.Source()
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\" class=\"%s\">", svgWidth, svgHeight, svgWidth, svgHeight, ScreenshotClass))
	buf.WriteString("<rect width=\"100%\" height=\"100%\" fill=\"#ffffff\"/>")
	buf.WriteString(fmt.Sprintf("<text x=\"%d\" y=\"18\" font-family=\"Arial, sans-serif\" font-size=\"14\" fill=\"#111827\">%s</text>", paddingLeft, escapeXML(TruncateTitle(in.Title))))
	plotW := svgWidth - paddingLeft - paddingRight
	plotH := svgHeight - paddingTop - paddingBottom

	var labels []string
	var maxVal float64
	snapshot := in.ChartType.IsSnapshot()
	var bars []Point
	if snapshot {
		ranked := Build(Input{ChartType: dataset.ChartRanking, Unit: in.Unit, YearRange: in.YearRange, Categories: in.Categories, Series: in.Series})
		if len(ranked.Series) > 0 {
			bars = ranked.Series[0].Data
		}
		for _, p := range bars {
			labels = append(labels, p.Name)
			if p.Y != nil && *p.Y > maxVal {
				maxVal = *p.Y
			}
		}
	} else {
		labels = in.Categories
		maxVal = seriesMax(in)
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	drawAxes(&buf, plotW, plotH, maxVal, in.Unit)
	if snapshot {
		drawBars(&buf, plotW, plotH, maxVal, bars)
	} else {
		for _, s := range in.Series {
			drawLineSeries(&buf, plotW, plotH, maxVal, s)
		}
	}
	drawLabels(&buf, plotW, plotH, labels)
	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

func seriesMax(in Input) float64 {
	maxVal := 0.0
	if in.ChartType == dataset.ChartStacked {
		for i := range in.Categories {
			sum := 0.0
			for _, s := range in.Series {
				if v := s.ValueAt(i); v != nil {
					sum += *v
				}
			}
			maxVal = math.Max(maxVal, sum)
		}
		return maxVal
	}
	if in.ChartType == dataset.ChartStackedPercent {
		return 100
	}
	for _, s := range in.Series {
		for _, v := range s.Data {
			if v != nil && *v > maxVal {
				maxVal = *v
			}
		}
	}
	return maxVal
}

func drawAxes(buf *bytes.Buffer, plotW, plotH int, maxVal float64, unit string) {
	x0 := paddingLeft
	y0 := paddingTop + plotH
	buf.WriteString(fmt.Sprintf("<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"#d1d5db\" stroke-width=\"1\"/>", x0, y0, x0+plotW, y0))
	buf.WriteString(fmt.Sprintf("<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"#d1d5db\" stroke-width=\"1\"/>", x0, paddingTop, x0, y0))
	steps := 4
	for i := 0; i <= steps; i++ {
		val := maxVal * float64(i) / float64(steps)
		y := y0 - int((val/maxVal)*float64(plotH))
		buf.WriteString(fmt.Sprintf("<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"#eef2f7\" stroke-width=\"1\"/>", x0, y, x0+plotW, y))
		buf.WriteString(fmt.Sprintf("<text x=\"%d\" y=\"%d\" font-family=\"Arial, sans-serif\" font-size=\"10\" fill=\"#6b7280\" text-anchor=\"end\">%s</text>", x0-6, y+4, formatNumber(val)))
	}
	if strings.TrimSpace(unit) != "" {
		buf.WriteString(fmt.Sprintf("<text x=\"%d\" y=\"%d\" font-family=\"Arial, sans-serif\" font-size=\"11\" fill=\"#6b7280\">%s</text>", x0, paddingTop-8, escapeXML(unit)))
	}
}

func drawBars(buf *bytes.Buffer, plotW, plotH int, maxVal float64, points []Point) {
	if len(points) == 0 {
		return
	}
	count := len(points)
	barGap := 6.0
	barW := (float64(plotW) - barGap*float64(count-1)) / float64(count)
	if barW < 6 {
		barW = 6
	}
	for i, p := range points {
		if p.Y == nil {
			continue
		}
		height := (*p.Y / maxVal) * float64(plotH)
		x := float64(paddingLeft) + float64(i)*(barW+barGap)
		y := float64(paddingTop) + float64(plotH) - height
		buf.WriteString(fmt.Sprintf("<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\" stroke=\"%s\"/>", x, y, barW, height, escapeXML(p.Color), escapeXML(p.BorderColor)))
	}
}

func drawLineSeries(buf *bytes.Buffer, plotW, plotH int, maxVal float64, s dataset.Series) {
	if len(s.Data) == 0 {
		return
	}
	color := s.Color
	if color == "" {
		color = "#5d86ff"
	}
	step := float64(plotW)
	if len(s.Data) > 1 {
		step = float64(plotW) / float64(len(s.Data)-1)
	}
	var path strings.Builder
	for i, v := range s.Data {
		if v == nil {
			continue
		}
		x := float64(paddingLeft) + step*float64(i)
		y := float64(paddingTop) + float64(plotH) - (*v/maxVal)*float64(plotH)
		if path.Len() == 0 {
			path.WriteString(fmt.Sprintf("M %.1f %.1f", x, y))
		} else {
			path.WriteString(fmt.Sprintf(" L %.1f %.1f", x, y))
		}
	}
	if path.Len() == 0 {
		return
	}
	buf.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\"><title>%s</title></path>", path.String(), escapeXML(color), escapeXML(s.Name)))
}

func drawLabels(buf *bytes.Buffer, plotW, plotH int, labels []string) {
	if len(labels) == 0 {
		return
	}
	count := len(labels)
	step := float64(plotW)
	if count > 1 {
		step = float64(plotW) / float64(count-1)
	}
	every := 1
	if count > 12 {
		every = int(math.Ceil(float64(count) / 12))
	}
	y := paddingTop + plotH + 18
	for i, label := range labels {
		if i%every != 0 {
			continue
		}
		x := float64(paddingLeft) + step*float64(i)
		buf.WriteString(fmt.Sprintf("<text x=\"%.1f\" y=\"%d\" font-family=\"Arial, sans-serif\" font-size=\"10\" fill=\"#6b7280\" text-anchor=\"middle\">%s</text>", x, y, escapeXML(trimLabel(label, 12))))
	}
}

func trimLabel(label string, limit int) string {
	if len(label) <= limit {
		return label
	}
	if limit <= 3 {
		return label[:limit]
	}
	return label[:limit-3] + "..."
}

func formatNumber(val float64) string {
	if math.Abs(val-math.Round(val)) < 0.001 {
		return fmt.Sprintf("%.0f", val)
	}
	return fmt.Sprintf("%.1f", val)
}

func escapeXML(val string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(val)
}
