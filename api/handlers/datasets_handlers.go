package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/charts"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/export"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const maxChartInputBody = 4 << 20

type DatasetsHandler struct {
	client *series.Client
	codecs urlstate.Codecs
	logger *utils.Logger
}

func NewDatasetsHandler(client *series.Client, codecs urlstate.Codecs, logger *utils.Logger) *DatasetsHandler {
	return &DatasetsHandler{client: client, codecs: codecs, logger: logger}
}

type datasetSummary struct {
	Slug             string              `json:"slug"`
	Label            string              `json:"label"`
	DefaultDimension dataset.Dimension   `json:"defaultDimension"`
	Dimensions       []dataset.Dimension `json:"dimensions"`
	Types            []string            `json:"types"`
	URL              string              `json:"url"`
}

type dimensionResponse struct {
	State selection.State `json:"state"`
	Title string          `json:"title"`
	URL   string          `json:"url"`
	Data  series.Result   `json:"data"`
}

// PagePath is the client page of a dataset.
func PagePath(slug string) string {
	return "/" + slug
}

// QueryFor translates a selection into a data query. Snapshot charts fetch
// the full range and pick their year afterwards.
func QueryFor(p *dataset.Profile, s selection.State) series.Query {
	q := series.Query{
		Dimension:  s.Dimension,
		Type:       s.Type,
		Unit:       s.Unit,
		GroupNames: s.GroupNames,
	}
	if dp, ok := p.Dimension(s.Dimension); ok && dp.Breakdown != "" {
		q.AuxKey = dp.Breakdown
		q.AuxValues = s.AuxFilters[dp.Breakdown]
		if q.AuxValues == nil {
			q.AuxValues = []string{}
		}
	}
	if s.IsRange {
		q.YearStart = s.YearRange.Min
		q.YearEnd = s.YearRange.Max
	}
	return q
}

// ChartInput assembles the option builder input for a fetched selection.
func ChartInput(p *dataset.Profile, s selection.State, res series.Result) charts.Input {
	unit := res.Unit
	if unit == "" {
		unit = s.Unit
	}
	return charts.Input{
		ChartType:  s.ChartType,
		Unit:       unit,
		YearRange:  s.YearRange,
		Title:      selection.GraphTitle(p.Label, s),
		Categories: res.Categories,
		Series:     res.Series,
	}
}

func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.client.Catalog().Datasets()
	out := make([]datasetSummary, 0, len(profiles))
	for _, p := range profiles {
		item := datasetSummary{
			Slug:             p.Slug,
			Label:            p.Label,
			DefaultDimension: p.DefaultDimension,
			Dimensions:       p.DimensionNames(),
			Types:            p.Types,
		}
		if codec, ok := h.codecs[p.Slug]; ok {
			item.URL = codec.URL(PagePath(p.Slug), selection.Default(p))
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *DatasetsHandler) Inputs(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "dataset")
	in, err := h.client.Inputs(r.Context(), slug, strings.TrimSpace(r.URL.Query().Get(urlstate.ParamType)))
	if err != nil {
		writeFetchError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// Dimension answers the data of the selection encoded in the query string.
func (h *DatasetsHandler) Dimension(w http.ResponseWriter, r *http.Request) {
	codec, state, ok := h.selection(w, r)
	if !ok {
		return
	}
	p := codec.Profile()
	res, err := h.client.Dimension(r.Context(), p.Slug, QueryFor(p, state))
	if err != nil {
		writeFetchError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dimensionResponse{
		State: state,
		Title: selection.GraphTitle(p.Label, state),
		URL:   codec.URL(PagePath(p.Slug), state),
		Data:  res,
	})
}

// ChartOptions answers the Highcharts options of a selection. The body hash
// doubles as ETag.
func (h *DatasetsHandler) ChartOptions(w http.ResponseWriter, r *http.Request) {
	opts, _, ok := h.chart(w, r)
	if !ok {
		return
	}
	body, err := json.Marshal(opts)
	if err != nil {
		h.logger.Errorf("chart options marshal: %v", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	etag := "\"" + utils.Sha256Hex(body)[:32] + "\""
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// BuildOptions builds options from a caller supplied input, custom
// passthrough included.
func (h *DatasetsHandler) BuildOptions(w http.ResponseWriter, r *http.Request) {
	var in charts.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChartInputBody))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, ok := dataset.ParseChartType(string(in.ChartType)); !ok {
		writeError(w, http.StatusBadRequest, "unknown chart type")
		return
	}
	writeJSON(w, http.StatusOK, charts.Build(in))
}

func (h *DatasetsHandler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	opts, _, ok := h.chart(w, r)
	if !ok {
		return
	}
	out, err := charts.RenderSVG(opts)
	if err != nil {
		h.logger.Errorf("chart svg: %v", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Embed serves the iframe page of a selection.
func (h *DatasetsHandler) Embed(w http.ResponseWriter, r *http.Request) {
	opts, state, ok := h.chart(w, r)
	if !ok {
		return
	}
	height := state.ChartHeight
	if err := utils.ValidateChartHeight(height); err != nil {
		height = selection.DefaultChartHeight
	}
	var buf bytes.Buffer
	if err := charts.RenderEmbed(&buf, opts, height); err != nil {
		h.logger.Errorf("embed render: %v", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *DatasetsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.exportSelection(w, r, export.WriteCSV, export.CSVContentType, export.CSVFilename)
}

func (h *DatasetsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportSelection(w, r, export.WriteXLSX, export.XLSXContentType, export.XLSXFilename)
}

func (h *DatasetsHandler) exportSelection(w http.ResponseWriter, r *http.Request, write exportWriter, contentType, filename string) {
	codec, state, ok := h.selection(w, r)
	if !ok {
		return
	}
	p := codec.Profile()
	res, err := h.client.Dimension(r.Context(), p.Slug, QueryFor(p, state))
	if err != nil {
		writeFetchError(w, r, h.logger, err)
		return
	}
	writeExport(w, h.logger, export.FromSeries(res.Categories, res.Series), write, contentType, filename)
}

func (h *DatasetsHandler) chart(w http.ResponseWriter, r *http.Request) (charts.Options, selection.State, bool) {
	codec, state, ok := h.selection(w, r)
	if !ok {
		return charts.Options{}, state, false
	}
	p := codec.Profile()
	res, err := h.client.Dimension(r.Context(), p.Slug, QueryFor(p, state))
	if err != nil {
		writeFetchError(w, r, h.logger, err)
		return charts.Options{}, state, false
	}
	return charts.Build(ChartInput(p, state, res)), state, true
}

func (h *DatasetsHandler) selection(w http.ResponseWriter, r *http.Request) (*urlstate.Codec, selection.State, bool) {
	codec, ok := h.codecs[urlParam(r, "dataset")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown dataset")
		return nil, selection.State{}, false
	}
	return codec, codec.Parse(r.URL.Query()), true
}
