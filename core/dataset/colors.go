package dataset

import (
	"hash/fnv"
	"strings"
	"unicode"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const DefaultTypeColor = "#DDD"

// TypeColor resolves the fixed color of a category (energy family, sector,
// gas). Unknown categories get DefaultTypeColor.
func (c *Catalog) TypeColor(name string) string {
	if c == nil {
		return DefaultTypeColor
	}
	if v, ok := c.Colors[Slugify(name)]; ok {
		return v
	}
	return DefaultTypeColor
}

// StringToColor derives a stable color from a group name.
func StringToColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	hue := float64(sum % 360)
	sat := 0.45 + float64((sum>>9)%30)/100
	val := 0.65 + float64((sum>>17)%25)/100
	return colorful.Hsv(hue, sat, val).Hex()
}

// Slugify lowercases, spells out "&" and joins words with dashes.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "&", " and ")
	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ':' || r == '(' || r == ')':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			dash = true
		}
	}
	return b.String()
}
