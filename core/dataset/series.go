package dataset

// Series is one named line of values aligned on a shared list of
// categories. Nil entries are missing values.
type Series struct {
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Data      []*float64 `json:"data"`
	DashStyle string     `json:"dashStyle,omitempty"`
}

// MultiSelect is a named preset of group names offered as a one-click
// selection.
type MultiSelect struct {
	Name       string   `json:"name"`
	GroupNames []string `json:"groupNames"`
}

// ValueAt returns the value at index i, nil when out of range.
func (s Series) ValueAt(i int) *float64 {
	if i < 0 || i >= len(s.Data) {
		return nil
	}
	return s.Data[i]
}

func Float(v float64) *float64 {
	return &v
}
