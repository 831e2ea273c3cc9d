package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
)

func primaryProfile(t *testing.T) *dataset.Profile {
	t.Helper()
	c, err := dataset.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	p, ok := c.Get("primary-energy")
	if !ok {
		t.Fatalf("missing primary-energy")
	}
	return p
}

func TestQueryForBreakdownUsesAuxFilter(t *testing.T) {
	p := primaryProfile(t)
	s := selection.Default(p)
	s.YearRange = selection.YearRange{Min: 1990, Max: 2000}
	q := QueryFor(p, s)
	if q.AuxKey != "energy-families" || len(q.AuxValues) != 4 {
		t.Fatalf("unexpected aux query %+v", q)
	}
	if q.YearStart != 1990 || q.YearEnd != 2000 {
		t.Fatalf("range selection must bound the query, got %d-%d", q.YearStart, q.YearEnd)
	}

	s.IsRange = false
	s.AuxFilters["energy-families"] = nil
	q = QueryFor(p, s)
	if q.YearStart != 0 || q.YearEnd != 0 {
		t.Fatalf("snapshot selection must fetch the full range")
	}
	if q.AuxValues == nil || len(q.AuxValues) != 0 {
		t.Fatalf("explicit empty aux list must stay empty, got %v", q.AuxValues)
	}
}

func TestQueryForGroupDimensionHasNoAux(t *testing.T) {
	p := primaryProfile(t)
	s := selection.Default(p)
	s.Dimension = dataset.DimensionTotal
	s.GroupNames = []string{"France", "Spain"}
	q := QueryFor(p, s)
	if q.AuxKey != "" || q.AuxValues != nil {
		t.Fatalf("unexpected aux on group dimension %+v", q)
	}
	if len(q.GroupNames) != 2 {
		t.Fatalf("unexpected groups %v", q.GroupNames)
	}
}

func TestChartInputCarriesTitleAndUnit(t *testing.T) {
	p := primaryProfile(t)
	s := selection.Default(p)
	s.GroupNames = []string{"France"}
	in := ChartInput(p, s, series.Result{Categories: []string{"2000"}, Unit: "Mtce"})
	if in.Unit != "Mtce" || in.ChartType != s.ChartType {
		t.Fatalf("unexpected input %+v", in)
	}
	if !strings.Contains(in.Title, "France") {
		t.Fatalf("expected group in title, got %q", in.Title)
	}
	in = ChartInput(p, s, series.Result{})
	if in.Unit != s.Unit {
		t.Fatalf("expected selection unit fallback, got %q", in.Unit)
	}
}

func TestExportHandlerRejectsMalformedJSON(t *testing.T) {
	h := NewExportHandler(nil)
	rr := httptest.NewRecorder()
	h.CSV(rr, httptest.NewRequest(http.MethodPost, "/export/csv", strings.NewReader(`{"id":1}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Disposition") != "" {
		t.Fatalf("no attachment expected on error")
	}
}

func TestShareHandlerClampsSize(t *testing.T) {
	h := NewShareHandler("http://client.test/", nil)
	rr := httptest.NewRecorder()
	h.QR(rr, httptest.NewRequest(http.MethodGet, "/api/share/qr?path=/coal&size=5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.QR(rr, httptest.NewRequest(http.MethodGet, "/api/share/qr?path=//evil.test/x", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for scheme relative path, got %d", rr.Code)
	}
}

func TestParseIntDefault(t *testing.T) {
	if parseIntDefault(" 42 ", 1) != 42 || parseIntDefault("x", 7) != 7 || parseIntDefault("-3", 7) != 7 || parseIntDefault("", 9) != 9 {
		t.Fatalf("unexpected parse results")
	}
}
