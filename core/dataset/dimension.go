package dataset

// Dimension is a named way of slicing a dataset. The set is closed: values
// only enter through ParseDimension or the constants below.
type Dimension string

const (
	DimensionTotal                        Dimension = "total"
	DimensionPerCapita                    Dimension = "perCapita"
	DimensionPerGDP                       Dimension = "perGDP"
	DimensionByEnergyFamily               Dimension = "byEnergyFamily"
	DimensionBySector                     Dimension = "bySector"
	DimensionByGas                        Dimension = "byGas"
	DimensionByCountry                    Dimension = "byCountry"
	DimensionByContinent                  Dimension = "byContinent"
	DimensionByScope                      Dimension = "byScope"
	DimensionRanking                      Dimension = "ranking"
	DimensionProvenReserve                Dimension = "provenReserve"
	DimensionOldExtrapolation             Dimension = "oldExtrapolation"
	DimensionExtrapolation                Dimension = "extrapolation"
	DimensionImportExport                 Dimension = "importExport"
	DimensionShareOfPrimaryEnergy         Dimension = "shareOfPrimaryEnergy"
	DimensionShareOfElectricityGeneration Dimension = "shareOfElectricityGeneration"
)

var dimensionLabels = map[Dimension]string{
	DimensionTotal:                        "",
	DimensionPerCapita:                    "per capita",
	DimensionPerGDP:                       "per GDP",
	DimensionByEnergyFamily:               "by source",
	DimensionBySector:                     "by sector",
	DimensionByGas:                        "by gas",
	DimensionByCountry:                    "by country",
	DimensionByContinent:                  "by continent",
	DimensionByScope:                      "by scope",
	DimensionRanking:                      "top countries",
	DimensionProvenReserve:                "proven reserves",
	DimensionOldExtrapolation:             "old extrapolation",
	DimensionExtrapolation:                "extrapolation",
	DimensionImportExport:                 "import / export",
	DimensionShareOfPrimaryEnergy:         "share of primary energy",
	DimensionShareOfElectricityGeneration: "share of electricity generation",
}

func ParseDimension(raw string) (Dimension, bool) {
	d := Dimension(raw)
	if _, ok := dimensionLabels[d]; !ok {
		return "", false
	}
	return d, true
}

func (d Dimension) Valid() bool {
	_, ok := dimensionLabels[d]
	return ok
}

// HumanReadable returns the label used in graph titles, "unknown" for
// values that did not come through ParseDimension.
func (d Dimension) HumanReadable() string {
	if label, ok := dimensionLabels[d]; ok {
		return label
	}
	return "unknown"
}

func (d Dimension) String() string {
	return string(d)
}

// ChartType selects one of the option builder branches.
type ChartType string

const (
	ChartStacked        ChartType = "stacked"
	ChartStackedPercent ChartType = "stacked-percent"
	ChartLine           ChartType = "line"
	ChartPie            ChartType = "pie"
	ChartRanking        ChartType = "ranking"
	ChartCustom         ChartType = "custom"
)

func ParseChartType(raw string) (ChartType, bool) {
	switch ct := ChartType(raw); ct {
	case ChartStacked, ChartStackedPercent, ChartLine, ChartPie, ChartRanking, ChartCustom:
		return ct, true
	default:
		return "", false
	}
}

// IsSnapshot reports chart types that show a single year.
func (c ChartType) IsSnapshot() bool {
	return c == ChartPie || c == ChartRanking
}

func (c ChartType) String() string {
	return string(c)
}

func ContainsChartType(list []ChartType, ct ChartType) bool {
	for _, item := range list {
		if item == ct {
			return true
		}
	}
	return false
}
