package selection

import (
	"sort"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

const DefaultChartHeight = "75rem"

// YearRange bounds a time series. Zero on either side means the full
// available range.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type State struct {
	Dimension   dataset.Dimension   `json:"dimension"`
	ChartType   dataset.ChartType   `json:"chartType"`
	ChartTypes  []dataset.ChartType `json:"chartTypes"`
	Unit        string              `json:"unit"`
	GDPUnit     string              `json:"gdpUnit,omitempty"`
	GroupNames  []string            `json:"groupNames"`
	YearRange   YearRange           `json:"yearRange"`
	IsRange     bool                `json:"isRange"`
	Multi       bool                `json:"multi"`
	AuxFilters  map[string][]string `json:"auxFilters"`
	AuxDisabled bool                `json:"auxDisabled"`
	Type        string              `json:"type,omitempty"`
	Iframe      bool                `json:"iframe"`
	ChartHeight string              `json:"chartHeight"`
}

// Default builds the initial state of a dataset page.
func Default(p *dataset.Profile) State {
	dp := p.DefaultDimensionProfile()
	s := State{
		Dimension:   dp.Name,
		ChartType:   dp.ChartType,
		ChartTypes:  append([]dataset.ChartType(nil), dp.ChartTypes...),
		Unit:        dp.Unit,
		GDPUnit:     p.GDPUnit,
		GroupNames:  append([]string(nil), p.DefaultGroups...),
		IsRange:     !dp.ChartType.IsSnapshot(),
		Multi:       dp.Multi,
		AuxFilters:  map[string][]string{},
		Type:        p.DefaultType,
		ChartHeight: DefaultChartHeight,
	}
	for _, aux := range p.AuxFilters {
		s.AuxFilters[aux.Key] = append([]string{}, aux.Defaults...)
	}
	if dp.SingleGroup && len(s.GroupNames) > 1 {
		s.GroupNames = s.GroupNames[:1]
	}
	return s
}

// Clone returns a deep copy; reductions never share slices or maps with
// their input.
func (s State) Clone() State {
	out := s
	out.ChartTypes = append([]dataset.ChartType(nil), s.ChartTypes...)
	out.GroupNames = append([]string(nil), s.GroupNames...)
	if s.AuxFilters != nil {
		out.AuxFilters = make(map[string][]string, len(s.AuxFilters))
		for k, v := range s.AuxFilters {
			out.AuxFilters[k] = append([]string{}, v...)
		}
	}
	return out
}

// Equal compares every tracked field. Nil and empty lists are equal.
func (s State) Equal(o State) bool {
	if s.Dimension != o.Dimension || s.ChartType != o.ChartType || s.Unit != o.Unit ||
		s.GDPUnit != o.GDPUnit || s.YearRange != o.YearRange || s.IsRange != o.IsRange ||
		s.Multi != o.Multi || s.AuxDisabled != o.AuxDisabled || s.Type != o.Type ||
		s.Iframe != o.Iframe || s.ChartHeight != o.ChartHeight {
		return false
	}
	if len(s.ChartTypes) != len(o.ChartTypes) {
		return false
	}
	for i := range s.ChartTypes {
		if s.ChartTypes[i] != o.ChartTypes[i] {
			return false
		}
	}
	if !equalStrings(s.GroupNames, o.GroupNames) {
		return false
	}
	if len(s.AuxFilters) != len(o.AuxFilters) {
		return false
	}
	for k, v := range s.AuxFilters {
		ov, ok := o.AuxFilters[k]
		if !ok || !equalStrings(v, ov) {
			return false
		}
	}
	return true
}

// OnlyYearRangeDiffers reports whether the year range is the single field
// that changed between s and o.
func (s State) OnlyYearRangeDiffers(o State) bool {
	if s.YearRange == o.YearRange {
		return false
	}
	o.YearRange = s.YearRange
	return s.Equal(o)
}

// AuxKeys lists the aux filter keys in a stable order.
func (s State) AuxKeys() []string {
	keys := make([]string, 0, len(s.AuxFilters))
	for k := range s.AuxFilters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
