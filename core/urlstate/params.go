package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	ParamDimension   = "dimension"
	ParamChartType   = "chart-type"
	ParamChartTypes  = "chart-types"
	ParamGroupNames  = "group-names"
	ParamIsRange     = "is-range"
	ParamStart       = "start"
	ParamEnd         = "end"
	ParamGDPUnit     = "gdp-unit"
	ParamMulti       = "multi"
	ParamType        = "type"
	ParamIframe      = "iframe"
	ParamChartHeight = "chart-height"
	ParamDisableAux  = "disable-en"
)

// Codec maps a selection to query parameters and back for one dataset.
type Codec struct {
	profile *dataset.Profile
	logger  *utils.Logger
}

func NewCodec(profile *dataset.Profile, logger *utils.Logger) *Codec {
	return &Codec{profile: profile, logger: logger}
}

func (c *Codec) Profile() *dataset.Profile {
	return c.profile
}

// Codecs holds one codec per dataset slug. Sessions are keyed on codec
// identity, so handlers share a single set.
type Codecs map[string]*Codec

func NewCodecs(catalog *dataset.Catalog, logger *utils.Logger) Codecs {
	out := Codecs{}
	if catalog == nil {
		return out
	}
	for _, p := range catalog.Datasets() {
		out[p.Slug] = NewCodec(p, logger)
	}
	return out
}

// Encode writes every tracked field. Aux filters that are empty are written
// as a single empty value so they survive a round trip.
func (c *Codec) Encode(s selection.State) url.Values {
	q := url.Values{}
	q.Set(ParamDimension, string(s.Dimension))
	q.Set(ParamChartType, string(s.ChartType))
	for _, ct := range s.ChartTypes {
		q.Add(ParamChartTypes, string(ct))
	}
	for _, g := range s.GroupNames {
		q.Add(ParamGroupNames, g)
	}
	q.Set(ParamIsRange, strconv.FormatBool(s.IsRange))
	if s.YearRange.Min != 0 {
		q.Set(ParamStart, strconv.Itoa(s.YearRange.Min))
	}
	if s.YearRange.Max != 0 {
		q.Set(ParamEnd, strconv.Itoa(s.YearRange.Max))
	}
	q.Set(c.profile.UnitParam, s.Unit)
	if s.GDPUnit != "" || c.profile.GDPUnit != "" {
		q.Set(ParamGDPUnit, s.GDPUnit)
	}
	q.Set(ParamMulti, strconv.FormatBool(s.Multi))
	if s.Type != "" || c.profile.DefaultType != "" {
		q.Set(ParamType, s.Type)
	}
	if s.Iframe {
		q.Set(ParamIframe, "true")
	}
	q.Set(ParamChartHeight, s.ChartHeight)
	if s.AuxDisabled {
		q.Set(ParamDisableAux, "true")
	}
	for _, key := range s.AuxKeys() {
		values := s.AuxFilters[key]
		if len(values) == 0 {
			q[key] = []string{""}
			continue
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}
	return q
}

// URL is the page address carrying s.
func (c *Codec) URL(path string, s selection.State) string {
	return path + "?" + c.Encode(s).Encode()
}

// Parse rebuilds a selection from query parameters. Every field falls back
// to a literal default when missing or malformed.
func (c *Codec) Parse(q url.Values) selection.State {
	p := c.profile
	s := selection.Default(p)

	dp := p.DefaultDimensionProfile()
	if raw := strings.TrimSpace(q.Get(ParamDimension)); raw != "" {
		d, ok := dataset.ParseDimension(raw)
		if ok {
			if found, exists := p.Dimension(d); exists {
				dp = found
			} else {
				ok = false
			}
		}
		if !ok {
			c.logger.Warnf("urlstate: %s: unknown dimension %q, using %s", p.Slug, raw, dp.Name)
		}
	}
	s.Dimension = dp.Name
	s.Multi = dp.Multi
	s.Unit = dp.Unit

	s.ChartTypes = append([]dataset.ChartType(nil), dp.ChartTypes...)
	if raws, ok := q[ParamChartTypes]; ok {
		var parsed []dataset.ChartType
		for _, raw := range raws {
			if ct, ok := dataset.ParseChartType(strings.TrimSpace(raw)); ok {
				parsed = append(parsed, ct)
			}
		}
		if len(parsed) > 0 {
			s.ChartTypes = parsed
		}
	}
	s.ChartType = dp.ChartType
	if raw := strings.TrimSpace(q.Get(ParamChartType)); raw != "" {
		if ct, ok := dataset.ParseChartType(raw); ok && dataset.ContainsChartType(s.ChartTypes, ct) {
			s.ChartType = ct
		} else {
			c.logger.Warnf("urlstate: %s: chart type %q not available, using %s", p.Slug, raw, dp.ChartType)
		}
	}
	if !dataset.ContainsChartType(s.ChartTypes, s.ChartType) && len(s.ChartTypes) > 0 {
		s.ChartType = s.ChartTypes[0]
	}

	if groups := nonEmpty(q[ParamGroupNames]); len(groups) > 0 {
		s.GroupNames = groups
	}
	if dp.SingleGroup && len(s.GroupNames) > 1 {
		s.GroupNames = s.GroupNames[:1]
	}

	s.IsRange = parseBool(q, ParamIsRange, true)
	s.YearRange.Min = parseYear(q.Get(ParamStart))
	s.YearRange.Max = parseYear(q.Get(ParamEnd))

	if raw := strings.TrimSpace(q.Get(p.UnitParam)); raw != "" {
		if _, err := p.Factor(dp.Unit, raw); err == nil {
			s.Unit = raw
		} else {
			c.logger.Warnf("urlstate: %s: %v, using %s", p.Slug, err, dp.Unit)
		}
	}
	if _, ok := q[ParamGDPUnit]; ok {
		s.GDPUnit = q.Get(ParamGDPUnit)
	}
	s.Multi = parseBool(q, ParamMulti, dp.Multi) && !dp.SingleGroup
	if _, ok := q[ParamType]; ok {
		s.Type = q.Get(ParamType)
	}
	s.Iframe = parseBool(q, ParamIframe, false)
	if raw := strings.TrimSpace(q.Get(ParamChartHeight)); raw != "" {
		s.ChartHeight = raw
	}
	s.AuxDisabled = parseBool(q, ParamDisableAux, false)

	for _, aux := range p.AuxFilters {
		if raws, ok := q[aux.Key]; ok {
			s.AuxFilters[aux.Key] = nonEmpty(raws)
		}
	}
	return s
}

func parseBool(q url.Values, key string, def bool) bool {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// parseYear returns 0, meaning the full range, for anything that is not a
// non-negative integer. Negative years never reach a URL: the reducer
// rejects them.
func parseYear(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func nonEmpty(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
