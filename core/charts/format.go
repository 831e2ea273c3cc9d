package charts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const titleLimit = 66

var printer = message.NewPrinter(language.English)

// FormatTooltipValue renders v with three significant digits and spaces as
// thousands separators, followed by the unit.
func FormatTooltipValue(v float64, unit string) string {
	var out string
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		out = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 3, 64), 64)
		decimals := 2
		if rounded != 0 {
			decimals = 2 - int(math.Floor(math.Log10(math.Abs(rounded))))
			if decimals < 0 {
				decimals = 0
			}
		}
		out = printer.Sprintf(fmt.Sprintf("%%.%df", decimals), rounded)
	}
	out = strings.ReplaceAll(out, ",", " ")
	if unit == "" {
		return out
	}
	return out + " " + unit
}

// TruncateTitle cuts titles longer than 66 characters and appends "...".
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleLimit {
		return title
	}
	return string(runes[:titleLimit]) + "..."
}

// ClosestCategoryIndex returns the index of the category numerically
// closest to year. The first one wins on ties; 0 when none is a number.
func ClosestCategoryIndex(categories []string, year int) int {
	best := -1
	bestDiff := 0.0
	for i, c := range categories {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			continue
		}
		diff := math.Abs(v - float64(year))
		if best == -1 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

// RGBA returns the css rgba() form of a hex color with the given alpha.
// Unparseable colors fall back to the neutral type color.
func RGBA(hex string, alpha float64) string {
	c, err := colorful.Hex(expandHex(hex))
	if err != nil {
		c, _ = colorful.Hex("#dddddd")
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// expandHex turns #rgb into #rrggbb.
func expandHex(hex string) string {
	hex = strings.TrimSpace(hex)
	if len(hex) != 4 || hex[0] != '#' {
		return hex
	}
	return string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
}
