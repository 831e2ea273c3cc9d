package series

import (
	"strconv"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
)

// aligned maps a series key to its values indexed like the year list.
type aligned map[string][]*float64

// align places every point at the index of its year, scaled by factor.
// Years without a point stay nil.
func align(years []int, points []store.Point, factor float64) aligned {
	index := make(map[int]int, len(years))
	for i, y := range years {
		index[y] = i
	}
	out := aligned{}
	for _, p := range points {
		i, ok := index[p.Year]
		if !ok {
			continue
		}
		row, ok := out[p.Key]
		if !ok {
			row = make([]*float64, len(years))
			out[p.Key] = row
		}
		if p.Value != nil {
			v := *p.Value * factor
			row[i] = &v
		}
	}
	return out
}

func (a aligned) row(key string, n int) []*float64 {
	if row, ok := a[key]; ok {
		return row
	}
	return make([]*float64, n)
}

func categories(years []int) []string {
	out := make([]string, 0, len(years))
	for _, y := range years {
		out = append(out, strconv.Itoa(y))
	}
	return out
}
