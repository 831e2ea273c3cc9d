package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

//go:embed profiles.yaml
var defaultProfiles []byte

var ErrUnknownUnit = errors.New("unknown unit conversion")

// Catalog is the set of dataset profiles served by the portal.
type Catalog struct {
	Colors   map[string]string `yaml:"colors"`
	Profiles []*Profile        `yaml:"datasets"`

	bySlug map[string]*Profile
}

type Profile struct {
	Slug             string             `yaml:"slug"`
	Label            string             `yaml:"label"`
	UnitParam        string             `yaml:"unit_param"`
	GDPUnit          string             `yaml:"gdp_unit"`
	DefaultDimension Dimension          `yaml:"default_dimension"`
	DefaultType      string             `yaml:"default_type"`
	Types            []string           `yaml:"types"`
	DefaultGroups    []string           `yaml:"default_groups"`
	AuxFilters       []AuxFilter        `yaml:"aux_filters"`
	UnitGroups       []UnitGroup        `yaml:"units"`
	Dimensions       []DimensionProfile `yaml:"dimensions"`
}

// AuxFilter is a dataset specific multi-value filter such as energy
// families, sectors or gases. Key doubles as the URL parameter name.
type AuxFilter struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Defaults []string `yaml:"defaults"`
}

// UnitGroup lists units convertible into each other. Factors are relative
// to Base; Pairs override the ratio for specific source/target pairs.
type UnitGroup struct {
	Base    string                        `yaml:"base"`
	Factors map[string]float64            `yaml:"factors"`
	Pairs   map[string]map[string]float64 `yaml:"pairs"`
}

// DimensionProfile holds the defaults applied when a dimension is selected.
type DimensionProfile struct {
	Name        Dimension   `yaml:"name"`
	ChartType   ChartType   `yaml:"chart_type"`
	ChartTypes  []ChartType `yaml:"chart_types"`
	Unit        string      `yaml:"unit"`
	Multi       bool        `yaml:"multi"`
	SingleGroup bool        `yaml:"single_group"`
	Breakdown   string      `yaml:"breakdown"`
	UsesGDP     bool        `yaml:"uses_gdp"`
}

// DefaultCatalog parses the embedded profiles.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultProfiles)
}

// LoadCatalog reads profiles from path, or the embedded set when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read datasets file: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse datasets: %w", err)
	}
	c.bySlug = make(map[string]*Profile, len(c.Profiles))
	for _, p := range c.Profiles {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("dataset %q: %w", p.Slug, err)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("dataset %q declared twice", p.Slug)
		}
		c.bySlug[p.Slug] = p
	}
	normalized := make(map[string]string, len(c.Colors))
	for k, v := range c.Colors {
		normalized[Slugify(k)] = v
	}
	c.Colors = normalized
	return c, nil
}

func (c *Catalog) Get(slug string) (*Profile, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.bySlug[strings.TrimSpace(slug)]
	return p, ok
}

func (c *Catalog) Datasets() []*Profile {
	if c == nil {
		return nil
	}
	out := make([]*Profile, len(c.Profiles))
	copy(out, c.Profiles)
	return out
}

func (p *Profile) validate() error {
	if strings.TrimSpace(p.Slug) == "" {
		return errors.New("slug is required")
	}
	if err := utils.ValidateSlug(p.Slug); err != nil {
		return err
	}
	if p.UnitParam == "" {
		return errors.New("unit_param is required")
	}
	if len(p.Dimensions) == 0 {
		return errors.New("at least one dimension is required")
	}
	if len(p.DefaultGroups) == 0 {
		p.DefaultGroups = []string{"World"}
	}
	seen := map[Dimension]bool{}
	for i := range p.Dimensions {
		d := &p.Dimensions[i]
		if !d.Name.Valid() {
			return fmt.Errorf("unknown dimension %q", d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("dimension %q declared twice", d.Name)
		}
		seen[d.Name] = true
		for _, ct := range d.ChartTypes {
			if _, ok := ParseChartType(string(ct)); !ok {
				return fmt.Errorf("dimension %s: unknown chart type %q", d.Name, ct)
			}
		}
		if !ContainsChartType(d.ChartTypes, d.ChartType) {
			return fmt.Errorf("dimension %s: chart_type %q not in chart_types", d.Name, d.ChartType)
		}
		if _, err := p.Factor(d.Unit, d.Unit); err != nil {
			return fmt.Errorf("dimension %s: %w", d.Name, err)
		}
		if d.Breakdown != "" {
			if _, ok := p.Aux(d.Breakdown); !ok {
				return fmt.Errorf("dimension %s: unknown breakdown %q", d.Name, d.Breakdown)
			}
		}
	}
	if p.DefaultDimension == "" {
		if seen[DimensionTotal] {
			p.DefaultDimension = DimensionTotal
		} else {
			p.DefaultDimension = p.Dimensions[0].Name
		}
	}
	if !seen[p.DefaultDimension] {
		return fmt.Errorf("default_dimension %q is not declared", p.DefaultDimension)
	}
	return nil
}

func (p *Profile) Dimension(d Dimension) (DimensionProfile, bool) {
	for _, dp := range p.Dimensions {
		if dp.Name == d {
			return dp, true
		}
	}
	return DimensionProfile{}, false
}

// DefaultDimensionProfile is never missing once the profile validated.
func (p *Profile) DefaultDimensionProfile() DimensionProfile {
	dp, _ := p.Dimension(p.DefaultDimension)
	return dp
}

func (p *Profile) DimensionNames() []Dimension {
	out := make([]Dimension, 0, len(p.Dimensions))
	for _, dp := range p.Dimensions {
		out = append(out, dp.Name)
	}
	return out
}

func (p *Profile) Aux(key string) (AuxFilter, bool) {
	for _, a := range p.AuxFilters {
		if a.Key == key {
			return a, true
		}
	}
	return AuxFilter{}, false
}

// Units lists every unit the dataset can be displayed in, sorted.
func (p *Profile) Units() []string {
	var out []string
	for _, g := range p.UnitGroups {
		for u := range g.Factors {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}

// Factor returns the multiplier converting a value in unit from into unit to.
func (p *Profile) Factor(from, to string) (float64, error) {
	for _, g := range p.UnitGroups {
		fromFactor, okFrom := g.Factors[from]
		toFactor, okTo := g.Factors[to]
		if !okFrom || !okTo {
			continue
		}
		if from == to {
			return 1, nil
		}
		if pair, ok := g.Pairs[from]; ok {
			if f, ok := pair[to]; ok {
				return f, nil
			}
		}
		if fromFactor == 0 {
			return 0, fmt.Errorf("%w: %s has a zero factor", ErrUnknownUnit, from)
		}
		return toFactor / fromFactor, nil
	}
	return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownUnit, from, to)
}
