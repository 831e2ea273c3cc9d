package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	for _, slug := range []string{"primary-energy", "final-energy", "electricity", "gas", "oil", "coal", "co2-from-energy", "ghg"} {
		if _, ok := c.Get(slug); !ok {
			t.Fatalf("expected dataset %s", slug)
		}
	}
	if _, ok := c.Get("unknown"); ok {
		t.Fatalf("unexpected dataset")
	}
	p, _ := c.Get("primary-energy")
	if p.DefaultDimension != DimensionByEnergyFamily {
		t.Fatalf("unexpected default dimension %s", p.DefaultDimension)
	}
	dp := p.DefaultDimensionProfile()
	if !dp.SingleGroup || dp.Breakdown != "energy-families" || dp.ChartType != ChartStacked {
		t.Fatalf("unexpected byEnergyFamily profile: %+v", dp)
	}
}

func TestFactorConversions(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	p, _ := c.Get("primary-energy")
	cases := []struct {
		from, to string
		want     float64
	}{
		{"Mtoe", "Mtoe", 1},
		{"Mtoe", "Mtce", 1.42857143},
		{"Mtce", "Mtoe", 0.7},
		{"Mtoe", "TWh", 11.63},
		{"toe", "KWh", 11630},
	}
	for _, tc := range cases {
		got, err := p.Factor(tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s -> %s: %v", tc.from, tc.to, err)
		}
		if got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
	if _, err := p.Factor("Mtoe", "KWh"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected unknown unit across groups, got %v", err)
	}
	if _, err := p.Factor("Gb", "Mtoe"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected unknown unit, got %v", err)
	}
}

func TestParseCatalogRejectsInvalidProfiles(t *testing.T) {
	cases := map[string]string{
		"unknown dimension": `
datasets:
  - slug: x
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: perPlanet, chart_type: line, chart_types: [line], unit: Mtoe}
`,
		"chart type outside list": `
datasets:
  - slug: x
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: total, chart_type: pie, chart_types: [line], unit: Mtoe}
`,
		"unknown unit": `
datasets:
  - slug: x
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: total, chart_type: line, chart_types: [line], unit: Gb}
`,
		"uppercase slug": `
datasets:
  - slug: Primary
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: total, chart_type: line, chart_types: [line], unit: Mtoe}
`,
		"unknown breakdown": `
datasets:
  - slug: x
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: bySector, chart_type: stacked, chart_types: [stacked], unit: Mtoe, breakdown: sectors}
`,
	}
	for name, raw := range cases {
		if _, err := ParseCatalog([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseCatalogDefaults(t *testing.T) {
	raw := `
datasets:
  - slug: x
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: perCapita, chart_type: line, chart_types: [line], unit: Mtoe}
      - {name: total, chart_type: line, chart_types: [line], unit: Mtoe}
`
	c, err := ParseCatalog([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, _ := c.Get("x")
	if p.DefaultDimension != DimensionTotal {
		t.Fatalf("expected total default, got %s", p.DefaultDimension)
	}
	if len(p.DefaultGroups) != 1 || p.DefaultGroups[0] != "World" {
		t.Fatalf("expected World default group, got %v", p.DefaultGroups)
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	raw := `
colors:
  Oil: "#000000"
datasets:
  - slug: custom
    unit_param: energy-unit
    units: [{base: Mtoe, factors: {Mtoe: 1}}]
    dimensions:
      - {name: total, chart_type: line, chart_types: [line], unit: Mtoe}
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Datasets()) != 1 {
		t.Fatalf("expected one dataset")
	}
	if c.TypeColor("oil") != "#000000" {
		t.Fatalf("expected normalized color key")
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestTypeColorAndStringToColor(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if got := c.TypeColor("Oil"); got != "#BC301A" {
		t.Fatalf("unexpected oil color %s", got)
	}
	if got := c.TypeColor("Electricity & Heat"); got != "#fc7362" {
		t.Fatalf("unexpected electricity & heat color %s", got)
	}
	if got := c.TypeColor("Antimatter"); got != DefaultTypeColor {
		t.Fatalf("expected fallback color, got %s", got)
	}
	a := StringToColor("France")
	if a != StringToColor("France") {
		t.Fatalf("expected stable color")
	}
	if !strings.HasPrefix(a, "#") || len(a) != 7 {
		t.Fatalf("unexpected color %q", a)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electricity & Heat":   "electricity-and-heat",
		"Solar, tide and wave": "solar-tide-and-wave",
		"  Oil products ":      "oil-products",
		"F-Gases":              "f-gases",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDimensionAndChartType(t *testing.T) {
	if d, ok := ParseDimension("byEnergyFamily"); !ok || d.HumanReadable() != "by source" {
		t.Fatalf("unexpected dimension parse")
	}
	if _, ok := ParseDimension("byPlanet"); ok {
		t.Fatalf("expected unknown dimension")
	}
	if Dimension("byPlanet").HumanReadable() != "unknown" {
		t.Fatalf("expected unknown label")
	}
	if DimensionTotal.HumanReadable() != "" {
		t.Fatalf("expected empty total label")
	}
	if ct, ok := ParseChartType("stacked-percent"); !ok || ct.IsSnapshot() {
		t.Fatalf("unexpected stacked-percent parse")
	}
	if !ChartPie.IsSnapshot() || !ChartRanking.IsSnapshot() || ChartLine.IsSnapshot() {
		t.Fatalf("unexpected snapshot flags")
	}
	if _, ok := ParseChartType("donut"); ok {
		t.Fatalf("expected unknown chart type")
	}
}
