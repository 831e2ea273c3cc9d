package series

import (
	"context"
	"fmt"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

// NameColor is a selectable value with its display color.
type NameColor struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type AuxInput struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Values []NameColor `json:"values"`
}

// Inputs lists what the selection form of a dataset can offer.
type Inputs struct {
	Dataset      string                `json:"dataset"`
	Label        string                `json:"label"`
	Type         string                `json:"type"`
	UnitParam    string                `json:"unitParam"`
	GDPUnit      string                `json:"gdpUnit,omitempty"`
	AuxFilters   []AuxInput            `json:"auxFilters"`
	Countries    []NameColor           `json:"countries"`
	Groups       []NameColor           `json:"groups"`
	Zones        []NameColor           `json:"zones"`
	MultiSelects []dataset.MultiSelect `json:"multiSelects"`
	Types        []string              `json:"types"`
	Dimensions   []dataset.Dimension   `json:"dimensions"`
	Units        []string              `json:"units"`
	Notes        string                `json:"notes"`
}

func (c *Client) Inputs(ctx context.Context, slug, typ string) (Inputs, error) {
	p, err := c.profile(slug)
	if err != nil {
		return Inputs{}, err
	}
	if typ == "" {
		typ = p.DefaultType
	}
	key := cacheKey("inputs", slug, typ)
	if in, ok := c.inputs.Get(key); ok {
		c.hits.Add(1)
		return in, nil
	}
	c.misses.Add(1)
	in, err := c.loadInputs(ctx, p, typ)
	if err != nil {
		return Inputs{}, fmt.Errorf("inputs %s: %w", slug, err)
	}
	c.inputs.Add(key, in)
	return in, nil
}

func (c *Client) loadInputs(ctx context.Context, p *dataset.Profile, typ string) (Inputs, error) {
	in := Inputs{
		Dataset:    p.Slug,
		Label:      p.Label,
		Type:       typ,
		UnitParam:  p.UnitParam,
		GDPUnit:    p.GDPUnit,
		Dimensions: p.DimensionNames(),
		Units:      p.Units(),
		AuxFilters: []AuxInput{},
	}
	for _, aux := range p.AuxFilters {
		values := []NameColor{}
		for _, dp := range p.Dimensions {
			if dp.Breakdown != aux.Key {
				continue
			}
			names, err := c.store.Categories(ctx, p.Slug, string(dp.Name), typ)
			if err != nil {
				return Inputs{}, err
			}
			values = c.typeColors(names)
			break
		}
		in.AuxFilters = append(in.AuxFilters, AuxInput{Key: aux.Key, Label: aux.Label, Values: values})
	}
	var err error
	if in.Countries, err = c.groupColors(ctx, p.Slug, "country"); err != nil {
		return Inputs{}, err
	}
	if in.Groups, err = c.groupColors(ctx, p.Slug, "group"); err != nil {
		return Inputs{}, err
	}
	if in.Zones, err = c.groupColors(ctx, p.Slug, "zone"); err != nil {
		return Inputs{}, err
	}
	if in.MultiSelects, err = c.multiSelects(ctx); err != nil {
		return Inputs{}, err
	}
	in.Types = p.Types
	if len(in.Types) == 0 {
		if in.Types, err = c.store.Types(ctx, p.Slug); err != nil {
			return Inputs{}, err
		}
	}
	in.Types = nonNil(in.Types)
	if in.Notes, err = c.store.Note(ctx, p.Slug); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func (c *Client) typeColors(names []string) []NameColor {
	out := make([]NameColor, 0, len(names))
	for _, n := range names {
		out = append(out, NameColor{Name: n, Color: c.catalog.TypeColor(n)})
	}
	return out
}

func (c *Client) groupColors(ctx context.Context, slug, groupType string) ([]NameColor, error) {
	names, err := c.store.DistinctGroups(ctx, slug, groupType)
	if err != nil {
		return nil, err
	}
	out := make([]NameColor, 0, len(names))
	for _, n := range names {
		out = append(out, NameColor{Name: n, Color: dataset.StringToColor(n)})
	}
	return out, nil
}

// multiSelects groups the preset rows by name, keeping the store order.
func (c *Client) multiSelects(ctx context.Context) ([]dataset.MultiSelect, error) {
	rows, err := c.store.MultiSelectGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := []dataset.MultiSelect{}
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Name]
		if !ok {
			i = len(out)
			index[r.Name] = i
			out = append(out, dataset.MultiSelect{Name: r.Name})
		}
		out[i].GroupNames = append(out[i].GroupNames, r.Country)
	}
	return out, nil
}

// Warm purges the caches and loads the inputs and default dimension of
// every dataset and type. It returns the number of entries loaded.
func (c *Client) Warm(ctx context.Context) (int, error) {
	c.Purge()
	loaded := 0
	for _, p := range c.catalog.Datasets() {
		types := p.Types
		if len(types) == 0 {
			types = []string{p.DefaultType}
		}
		for _, typ := range types {
			if err := ctx.Err(); err != nil {
				return loaded, err
			}
			if _, err := c.Inputs(ctx, p.Slug, typ); err != nil {
				return loaded, err
			}
			loaded++
			dp := p.DefaultDimensionProfile()
			q := Query{Dimension: dp.Name, Type: typ, Unit: dp.Unit, GroupNames: p.DefaultGroups}
			if dp.Breakdown != "" {
				if aux, ok := p.Aux(dp.Breakdown); ok {
					q.AuxKey = aux.Key
					q.AuxValues = aux.Defaults
				}
			}
			if _, err := c.Dimension(ctx, p.Slug, q); err != nil {
				return loaded, err
			}
			loaded++
		}
	}
	c.logger.Printf("series cache warmed: %d entries", loaded)
	return loaded, nil
}
