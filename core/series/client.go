package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

var (
	ErrUnknownDataset   = errors.New("unknown dataset")
	ErrUnknownDimension = errors.New("dimension not available")
	ErrUnknownUnit      = dataset.ErrUnknownUnit
	ErrInvalidQuery     = errors.New("invalid query")
)

const (
	DefaultCacheTTL  = 15 * time.Minute
	DefaultCacheSize = 512

	topCountriesName  = "Quickselect top countries (based on last year)"
	flopCountriesName = "Quickselect flop countries (based on last year)"
	quickSelectSize   = 10
)

// Client answers dataset queries from the observations store. One client
// is built at startup and shared by every handler.
type Client struct {
	catalog *dataset.Catalog
	store   store.ObservationsStore
	logger  *utils.Logger

	results *expirable.LRU[string, Result]
	inputs  *expirable.LRU[string, Inputs]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func NewClient(catalog *dataset.Catalog, st store.ObservationsStore, opts Options, logger *utils.Logger) *Client {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Client{
		catalog: catalog,
		store:   st,
		logger:  logger,
		results: expirable.NewLRU[string, Result](opts.CacheSize, nil, opts.CacheTTL),
		inputs:  expirable.NewLRU[string, Inputs](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (c *Client) Catalog() *dataset.Catalog {
	return c.catalog
}

// Query selects one dimension of a dataset. AuxKey, when set, must name the
// breakdown filter of the dimension. Zero years mean the full range.
type Query struct {
	Dimension  dataset.Dimension `json:"dimension"`
	Type       string            `json:"type"`
	Unit       string            `json:"unit"`
	GroupNames []string          `json:"groupNames"`
	AuxKey     string            `json:"auxKey,omitempty"`
	AuxValues  []string          `json:"auxValues,omitempty"`
	YearStart  int               `json:"yearStart"`
	YearEnd    int               `json:"yearEnd"`
}

// Result is the chart ready data of one dimension. Every series has one
// value per category.
type Result struct {
	Categories   []string              `json:"categories"`
	Series       []dataset.Series      `json:"series"`
	MultiSelects []dataset.MultiSelect `json:"multiSelects,omitempty"`
	Unit         string                `json:"unit"`
}

func (c *Client) profile(slug string) (*dataset.Profile, error) {
	p, ok := c.catalog.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, slug)
	}
	return p, nil
}

// Dimension fetches the series of one dimension, converted into q.Unit.
func (c *Client) Dimension(ctx context.Context, slug string, q Query) (Result, error) {
	p, err := c.profile(slug)
	if err != nil {
		return Result{}, err
	}
	dp, ok := p.Dimension(q.Dimension)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s for %s", ErrUnknownDimension, q.Dimension, slug)
	}
	if q.Unit == "" {
		q.Unit = dp.Unit
	}
	if q.Type == "" {
		q.Type = p.DefaultType
	}
	q.GroupNames = compact(q.GroupNames)
	if len(q.GroupNames) == 0 {
		q.GroupNames = p.DefaultGroups
	}
	if q.AuxKey != "" && q.AuxKey != dp.Breakdown {
		return Result{}, fmt.Errorf("%w: %s does not filter %s", ErrInvalidQuery, q.AuxKey, q.Dimension)
	}
	q.AuxKey = dp.Breakdown
	if dp.Breakdown == "" {
		q.AuxValues = nil
	}
	factor, err := p.Factor(dp.Unit, q.Unit)
	if err != nil {
		return Result{}, err
	}
	key := cacheKey("dimension", slug, q)
	if res, ok := c.results.Get(key); ok {
		c.hits.Add(1)
		return res, nil
	}
	c.misses.Add(1)

	var res Result
	if dp.Breakdown != "" {
		res, err = c.breakdown(ctx, slug, dp, q, factor)
	} else {
		res, err = c.byGroup(ctx, slug, dp, q, factor)
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s/%s: %w", slug, q.Dimension, err)
	}
	res.Unit = q.Unit
	c.results.Add(key, res)
	return res, nil
}

// breakdown returns one series per aux value for the first group.
func (c *Client) breakdown(ctx context.Context, slug string, dp dataset.DimensionProfile, q Query, factor float64) (Result, error) {
	values := compact(q.AuxValues)
	if len(values) == 0 {
		return Result{Categories: []string{}, Series: []dataset.Series{}}, nil
	}
	f := store.ObservationFilter{
		Dataset:    slug,
		Dimension:  string(dp.Name),
		Type:       q.Type,
		GroupNames: q.GroupNames[:1],
		Categories: values,
		YearStart:  q.YearStart,
		YearEnd:    q.YearEnd,
	}
	years, err := c.store.Years(ctx, f)
	if err != nil {
		return Result{}, err
	}
	points, err := c.store.Points(ctx, f, store.GroupByCategory)
	if err != nil {
		return Result{}, err
	}
	aligned := align(years, points, factor)
	res := Result{Categories: categories(years)}
	for _, v := range values {
		res.Series = append(res.Series, dataset.Series{
			Name:  v,
			Color: c.catalog.TypeColor(v),
			Data:  aligned.row(v, len(years)),
		})
	}
	return res, nil
}

// byGroup returns one series per group plus the top / flop quick selects.
func (c *Client) byGroup(ctx context.Context, slug string, dp dataset.DimensionProfile, q Query, factor float64) (Result, error) {
	groups := q.GroupNames
	f := store.ObservationFilter{
		Dataset:    slug,
		Dimension:  string(dp.Name),
		Type:       q.Type,
		GroupNames: groups,
		YearStart:  q.YearStart,
		YearEnd:    q.YearEnd,
	}
	years, err := c.store.Years(ctx, f)
	if err != nil {
		return Result{}, err
	}
	points, err := c.store.Points(ctx, f, store.GroupByGroupName)
	if err != nil {
		return Result{}, err
	}
	top, err := c.store.RankCountries(ctx, slug, string(dp.Name), q.Type, true, quickSelectSize)
	if err != nil {
		return Result{}, err
	}
	flop, err := c.store.RankCountries(ctx, slug, string(dp.Name), q.Type, false, quickSelectSize)
	if err != nil {
		return Result{}, err
	}
	aligned := align(years, points, factor)
	res := Result{
		Categories: categories(years),
		MultiSelects: []dataset.MultiSelect{
			{Name: topCountriesName, GroupNames: nonNil(top)},
			{Name: flopCountriesName, GroupNames: nonNil(flop)},
		},
	}
	for _, g := range groups {
		res.Series = append(res.Series, dataset.Series{
			Name:  g,
			Color: dataset.StringToColor(g),
			Data:  aligned.row(g, len(years)),
		})
	}
	return res, nil
}

// Purge drops every cached result and input set.
func (c *Client) Purge() {
	c.results.Purge()
	c.inputs.Purge()
}

type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

func (c *Client) CacheStats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.results.Len() + c.inputs.Len(),
	}
}

func cacheKey(kind, slug string, v any) string {
	raw, _ := json.Marshal(v)
	return kind + "|" + slug + "|" + string(raw)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
