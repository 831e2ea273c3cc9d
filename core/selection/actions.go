package selection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

// Action is the closed set of selection changes. Only the variants in this
// package implement it.
type Action interface {
	isAction()
	Name() string
}

type ChangeDimension struct {
	Dimension dataset.Dimension
	// AllAux is the complete list of aux values, applied to breakdown
	// dimensions when non-empty.
	AllAux []string
}

type ChangeGroupNames struct {
	GroupNames []string
}

type ChangeUnit struct {
	Unit string
}

type ChangeGDPUnit struct {
	Unit string
}

type ChangeType struct {
	Type string
}

type ChangeChartType struct {
	ChartType dataset.ChartType
	AllAux    []string
}

type ChangeYearRange struct {
	Min int
	Max int
}

type ChangeAuxFilter struct {
	Key    string
	Values []string
}

func (ChangeDimension) isAction()  {}
func (ChangeGroupNames) isAction() {}
func (ChangeUnit) isAction()       {}
func (ChangeGDPUnit) isAction()    {}
func (ChangeType) isAction()       {}
func (ChangeChartType) isAction()  {}
func (ChangeYearRange) isAction()  {}
func (ChangeAuxFilter) isAction()  {}

func (ChangeDimension) Name() string  { return "change-dimension" }
func (ChangeGroupNames) Name() string { return "change-group-names" }
func (ChangeUnit) Name() string       { return "change-unit" }
func (ChangeGDPUnit) Name() string    { return "change-gdp-unit" }
func (ChangeType) Name() string       { return "change-type" }
func (a ChangeChartType) Name() string {
	return "change-chart-type-to-" + string(a.ChartType)
}
func (ChangeYearRange) Name() string { return "change-year-range" }
func (ChangeAuxFilter) Name() string { return "change-aux-filter" }

// ActionPayload is the wire form of an action, as posted by the client.
type ActionPayload struct {
	Type      string   `json:"type"`
	Dimension string   `json:"dimension,omitempty"`
	Values    []string `json:"values,omitempty"`
	Value     string   `json:"value,omitempty"`
	Key       string   `json:"key,omitempty"`
	Min       int      `json:"min,omitempty"`
	Max       int      `json:"max,omitempty"`
	AllAux    []string `json:"allAux,omitempty"`
}

// DecodeAction turns a wire payload into its typed variant. Unknown tags
// and values outside the closed sets are errors.
func DecodeAction(raw []byte) (Action, error) {
	var p ActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return p.Action()
}

func (p ActionPayload) Action() (Action, error) {
	kind := strings.TrimSpace(p.Type)
	if strings.HasPrefix(kind, "change-chart-type-to-") {
		ct, ok := dataset.ParseChartType(strings.TrimPrefix(kind, "change-chart-type-to-"))
		if !ok {
			return nil, fmt.Errorf("unknown chart type in %q", kind)
		}
		return ChangeChartType{ChartType: ct, AllAux: p.AllAux}, nil
	}
	switch kind {
	case "change-dimension":
		d, ok := dataset.ParseDimension(p.Dimension)
		if !ok {
			return nil, fmt.Errorf("unknown dimension %q", p.Dimension)
		}
		return ChangeDimension{Dimension: d, AllAux: p.AllAux}, nil
	case "change-group-names":
		return ChangeGroupNames{GroupNames: p.Values}, nil
	case "change-unit":
		return ChangeUnit{Unit: p.Value}, nil
	case "change-gdp-unit":
		return ChangeGDPUnit{Unit: p.Value}, nil
	case "change-type":
		return ChangeType{Type: p.Value}, nil
	case "change-year-range":
		return ChangeYearRange{Min: p.Min, Max: p.Max}, nil
	case "change-aux-filter":
		if strings.TrimSpace(p.Key) == "" {
			return nil, fmt.Errorf("aux filter key is required")
		}
		return ChangeAuxFilter{Key: p.Key, Values: p.Values}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", kind)
	}
}
