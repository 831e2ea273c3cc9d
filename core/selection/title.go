package selection

import (
	"strconv"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

// GraphTitle builds the chart title shown above a dataset graph, e.g.
// "Primary energy Production by source - France, 1990-2019".
func GraphTitle(label string, s State) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(label))
	if s.Type != "" {
		b.WriteString(" ")
		b.WriteString(s.Type)
	}
	if s.Dimension != dataset.DimensionTotal {
		if human := s.Dimension.HumanReadable(); human != "" {
			b.WriteString(" ")
			b.WriteString(human)
		}
	}
	b.WriteString(" -")
	if len(s.GroupNames) == 1 {
		b.WriteString(" ")
		b.WriteString(s.GroupNames[0])
		b.WriteString(",")
	}
	if years := yearsLabel(s); years != "" {
		b.WriteString(" ")
		b.WriteString(years)
	}
	return b.String()
}

func yearsLabel(s State) string {
	if s.YearRange.Max == 0 {
		return ""
	}
	if !s.IsRange || s.YearRange.Min == 0 {
		return strconv.Itoa(s.YearRange.Max)
	}
	return strconv.Itoa(s.YearRange.Min) + "-" + strconv.Itoa(s.YearRange.Max)
}
