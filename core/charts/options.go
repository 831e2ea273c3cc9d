package charts

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
)

// Input is everything the option builder needs for one chart.
type Input struct {
	ChartType  dataset.ChartType   `json:"chartType"`
	Unit       string              `json:"unit"`
	YearRange  selection.YearRange `json:"yearRange"`
	Title      string              `json:"title"`
	Categories []string            `json:"categories"`
	Series     []dataset.Series    `json:"series"`
	Custom     json.RawMessage     `json:"custom,omitempty"`
}

// Options is a Highcharts configuration document. Every branch of Build
// fills it from scratch.
type Options struct {
	Chart       Chart        `json:"chart"`
	Title       Title        `json:"title"`
	Legend      Legend       `json:"legend"`
	Credits     Credits      `json:"credits"`
	Exporting   Exporting    `json:"exporting"`
	Tooltip     Tooltip      `json:"tooltip"`
	PlotOptions *PlotOptions `json:"plotOptions,omitempty"`
	XAxis       *XAxis       `json:"xAxis,omitempty"`
	YAxis       *YAxis       `json:"yAxis"`
	Series      []Series     `json:"series"`

	raw json.RawMessage
	src Input
}

type Chart struct {
	Type string `json:"type"`
}

type Title struct {
	Text  string `json:"text"`
	Align string `json:"align"`
}

type Legend struct {
	Enabled bool   `json:"enabled"`
	Align   string `json:"align,omitempty"`
}

type Credits struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

type Exporting struct {
	Enabled  bool   `json:"enabled"`
	Filename string `json:"filename"`
}

type Tooltip struct {
	Enabled      bool   `json:"enabled"`
	Shared       bool   `json:"shared,omitempty"`
	UseHTML      bool   `json:"useHTML,omitempty"`
	HeaderFormat string `json:"headerFormat,omitempty"`
	PointFormat  string `json:"pointFormat,omitempty"`
}

type PlotOptions struct {
	Areaspline *AreaOptions   `json:"areaspline,omitempty"`
	Spline     *SplineOptions `json:"spline,omitempty"`
	Pie        *PieOptions    `json:"pie,omitempty"`
}

type Marker struct {
	Enabled bool `json:"enabled"`
}

type AreaOptions struct {
	Stacking    string  `json:"stacking"`
	LineWidth   float64 `json:"lineWidth"`
	FillOpacity float64 `json:"fillOpacity"`
	Marker      Marker  `json:"marker"`
}

type SplineOptions struct {
	ConnectNulls bool    `json:"connectNulls"`
	LineWidth    float64 `json:"lineWidth"`
	Marker       Marker  `json:"marker"`
}

type PieOptions struct {
	AllowPointSelect bool        `json:"allowPointSelect"`
	Cursor           string      `json:"cursor"`
	InnerSize        string      `json:"innerSize"`
	BorderWidth      int         `json:"borderWidth"`
	DataLabels       *DataLabels `json:"dataLabels,omitempty"`
}

type AxisTitle struct {
	Text string `json:"text"`
}

type XAxis struct {
	Type         string   `json:"type"`
	Visible      bool     `json:"visible"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	TickInterval int64    `json:"tickInterval,omitempty"`
	Categories   []string `json:"categories,omitempty"`
}

type YAxis struct {
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	SoftMin *float64  `json:"softMin,omitempty"`
	Title   AxisTitle `json:"title"`
}

type DataLabels struct {
	Enabled bool   `json:"enabled"`
	Inside  bool   `json:"inside,omitempty"`
	Align   string `json:"align,omitempty"`
	Format  string `json:"format,omitempty"`
}

type DataSorting struct {
	Enabled bool   `json:"enabled"`
	SortKey string `json:"sortKey,omitempty"`
}

type Series struct {
	Type           string       `json:"type,omitempty"`
	Name           string       `json:"name"`
	Color          string       `json:"color,omitempty"`
	DashStyle      string       `json:"dashStyle,omitempty"`
	PointRange     int64        `json:"pointRange,omitempty"`
	PointWidth     int          `json:"pointWidth,omitempty"`
	MinPointLength int          `json:"minPointLength,omitempty"`
	DataLabels     *DataLabels  `json:"dataLabels,omitempty"`
	DataSorting    *DataSorting `json:"dataSorting,omitempty"`
	Data           []Point      `json:"data"`
}

// Point is a series point. Label carries the preformatted tooltip value.
type Point struct {
	X           *int64   `json:"x,omitempty"`
	Y           *float64 `json:"y"`
	Name        string   `json:"name,omitempty"`
	Color       string   `json:"color,omitempty"`
	BorderColor string   `json:"borderColor,omitempty"`
	Label       string   `json:"label,omitempty"`
}

// MarshalJSON emits custom options verbatim.
func (o Options) MarshalJSON() ([]byte, error) {
	if o.raw != nil {
		return o.raw, nil
	}
	type plain Options
	return json.Marshal(plain(o))
}

// Source returns the input the options were built from.
func (o Options) Source() Input {
	return o.src
}

func (o Options) IsCustom() bool {
	return o.raw != nil
}

// yearMillis is Date.UTC(year, 0) for a category, false when the category
// is not a year.
func yearMillis(category string) (int64, bool) {
	year, err := strconv.Atoi(category)
	if err != nil {
		return 0, false
	}
	return millisOfYear(year), true
}

func millisOfYear(year int) int64 {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func float(v float64) *float64 {
	return &v
}
