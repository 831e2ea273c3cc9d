package selection

import (
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

// Reducer applies actions to the selection of one dataset page.
type Reducer struct {
	profile *dataset.Profile
	logger  *utils.Logger
}

func NewReducer(profile *dataset.Profile, logger *utils.Logger) *Reducer {
	return &Reducer{profile: profile, logger: logger}
}

// Reduce returns the state that follows action. The input is never
// modified; rejected actions return a normalized copy and log a warning.
func (r *Reducer) Reduce(state State, action Action) State {
	next := r.normalize(state.Clone())
	switch a := action.(type) {
	case ChangeDimension:
		return r.changeDimension(next, a)
	case ChangeGroupNames:
		groups := compact(a.GroupNames)
		if len(groups) == 0 {
			r.logger.Warnf("selection: %s: empty group list ignored", a.Name())
			return next
		}
		if (!next.Multi || r.singleGroup(next.Dimension)) && len(groups) > 1 {
			groups = groups[:1]
		}
		next.GroupNames = groups
	case ChangeUnit:
		if !r.unitAllowed(next, a.Unit) {
			r.logger.Warnf("selection: %s: unit %q not available for %s", a.Name(), a.Unit, next.Dimension)
			return next
		}
		next.Unit = a.Unit
	case ChangeGDPUnit:
		if strings.TrimSpace(a.Unit) == "" {
			r.logger.Warnf("selection: %s: empty unit ignored", a.Name())
			return next
		}
		next.GDPUnit = a.Unit
	case ChangeType:
		if r.profile != nil && len(r.profile.Types) > 0 && !contains(r.profile.Types, a.Type) {
			r.logger.Warnf("selection: %s: unknown type %q", a.Name(), a.Type)
			return next
		}
		next.Type = a.Type
	case ChangeChartType:
		return r.changeChartType(next, a)
	case ChangeYearRange:
		if a.Min < 0 || a.Max < 0 {
			r.logger.Warnf("selection: %s: negative year ignored (%d-%d)", a.Name(), a.Min, a.Max)
			return next
		}
		next.YearRange = YearRange{Min: a.Min, Max: a.Max}
	case ChangeAuxFilter:
		if r.profile != nil {
			if _, ok := r.profile.Aux(a.Key); !ok {
				r.logger.Warnf("selection: %s: unknown filter %q", a.Name(), a.Key)
				return next
			}
		}
		if next.AuxFilters == nil {
			next.AuxFilters = map[string][]string{}
		}
		next.AuxFilters[a.Key] = compact(a.Values)
	default:
		r.logger.Warnf("selection: unrecognized action %T", action)
		return next
	}
	return r.normalize(next)
}

// normalize keeps single group dimensions at one group with Multi off.
func (r *Reducer) normalize(s State) State {
	if !r.singleGroup(s.Dimension) {
		return s
	}
	s.Multi = false
	if len(s.GroupNames) > 1 {
		s.GroupNames = s.GroupNames[:1]
	}
	return s
}

func (r *Reducer) singleGroup(d dataset.Dimension) bool {
	if r.profile == nil {
		return false
	}
	dp, ok := r.profile.Dimension(d)
	return ok && dp.SingleGroup
}

func (r *Reducer) changeDimension(next State, a ChangeDimension) State {
	if r.profile == nil {
		r.logger.Warnf("selection: %s: no dataset profile", a.Name())
		return next
	}
	dp, ok := r.profile.Dimension(a.Dimension)
	if !ok {
		r.logger.Warnf("selection: %s: dimension %q not available", a.Name(), a.Dimension)
		return next
	}
	next.Dimension = dp.Name
	next.ChartType = dp.ChartType
	next.ChartTypes = append([]dataset.ChartType(nil), dp.ChartTypes...)
	next.Unit = dp.Unit
	next.Multi = dp.Multi
	next.IsRange = !dp.ChartType.IsSnapshot()
	next.AuxDisabled = false
	if all := compact(a.AllAux); dp.Breakdown != "" && len(all) > 0 {
		if next.AuxFilters == nil {
			next.AuxFilters = map[string][]string{}
		}
		next.AuxFilters[dp.Breakdown] = all
	}
	if dp.UsesGDP {
		next.GDPUnit = r.profile.GDPUnit
	}
	return r.normalize(next)
}

func (r *Reducer) changeChartType(next State, a ChangeChartType) State {
	if !dataset.ContainsChartType(next.ChartTypes, a.ChartType) {
		r.logger.Warnf("selection: %s: not available for %s", a.Name(), next.Dimension)
		return next
	}
	next.ChartType = a.ChartType
	switch a.ChartType {
	case dataset.ChartPie:
		next.IsRange = false
		next.AuxDisabled = true
		if all := compact(a.AllAux); r.breakdownKey(next.Dimension) != "" && len(all) > 0 {
			if next.AuxFilters == nil {
				next.AuxFilters = map[string][]string{}
			}
			next.AuxFilters[r.breakdownKey(next.Dimension)] = all
		}
	case dataset.ChartRanking:
		next.IsRange = false
		next.AuxDisabled = true
	case dataset.ChartStacked, dataset.ChartStackedPercent, dataset.ChartLine:
		next.IsRange = true
		next.AuxDisabled = false
	}
	return r.normalize(next)
}

func (r *Reducer) breakdownKey(d dataset.Dimension) string {
	if r.profile == nil {
		return ""
	}
	dp, ok := r.profile.Dimension(d)
	if !ok {
		return ""
	}
	return dp.Breakdown
}

func (r *Reducer) unitAllowed(s State, unit string) bool {
	if strings.TrimSpace(unit) == "" {
		return false
	}
	if r.profile == nil {
		return true
	}
	dp, ok := r.profile.Dimension(s.Dimension)
	if !ok {
		return true
	}
	_, err := r.profile.Factor(dp.Unit, unit)
	return err == nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
