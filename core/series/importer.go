package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	MultiSelectFile = "multiselect_groups.csv"
	importBatchSize = 500
)

var requiredColumns = []string{"dimension", "group_name", "year"}

// Importer loads observation CSV files into the store. A data directory
// holds one <dataset>.csv per dataset, optional <dataset>.md notes and a
// multiselect_groups.csv file.
type Importer struct {
	catalog *dataset.Catalog
	store   store.ObservationsStore
	logger  *utils.Logger
}

type ImportReport struct {
	Files        []string `json:"files"`
	Rows         int      `json:"rows"`
	Inserted     int      `json:"inserted"`
	MultiSelects int      `json:"multi_selects"`
	Notes        int      `json:"notes"`
}

func NewImporter(catalog *dataset.Catalog, st store.ObservationsStore, logger *utils.Logger) *Importer {
	return &Importer{catalog: catalog, store: st, logger: logger}
}

func (im *Importer) ImportDir(ctx context.Context, dir string, replace bool) (ImportReport, error) {
	var report ImportReport
	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read data dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		ext := strings.ToLower(filepath.Ext(name))
		slug := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case name == MultiSelectFile:
			n, err := im.importFile(path, func(r io.Reader) (int, error) { return im.ImportMultiSelects(ctx, r) })
			if err != nil {
				return report, err
			}
			report.MultiSelects += n
		case ext == ".md":
			if _, ok := im.catalog.Get(slug); !ok {
				im.logger.Warnf("import: notes for unknown dataset %s skipped", slug)
				continue
			}
			body, err := os.ReadFile(path)
			if err != nil {
				return report, err
			}
			if err := im.store.PutNote(ctx, slug, string(body)); err != nil {
				return report, fmt.Errorf("%s: %w", name, err)
			}
			report.Notes++
		case ext == ".csv":
			if _, ok := im.catalog.Get(slug); !ok {
				im.logger.Warnf("import: %s does not match a dataset, skipped", name)
				continue
			}
			if replace {
				if err := im.store.DeleteDataset(ctx, slug); err != nil {
					return report, fmt.Errorf("%s: %w", name, err)
				}
			}
			var part ImportReport
			_, err := im.importFile(path, func(r io.Reader) (int, error) {
				var err error
				part, err = im.ImportObservations(ctx, slug, r)
				return part.Inserted, err
			})
			if err != nil {
				return report, fmt.Errorf("%s: %w", name, err)
			}
			report.Rows += part.Rows
			report.Inserted += part.Inserted
		default:
			continue
		}
		report.Files = append(report.Files, name)
	}
	im.logger.Printf("import: %d files, %d rows, %d inserted", len(report.Files), report.Rows, report.Inserted)
	return report, nil
}

func (im *Importer) importFile(path string, fn func(io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return fn(f)
}

// ImportObservations reads rows with the columns dimension, type,
// group_type, group_name, category, year and value. Only dimension,
// group_name and year are required; an empty value is stored as null.
func (im *Importer) ImportObservations(ctx context.Context, slug string, r io.Reader) (ImportReport, error) {
	var report ImportReport
	p, ok := im.catalog.Get(slug)
	if !ok {
		return report, fmt.Errorf("%w: %s", ErrUnknownDataset, slug)
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return report, fmt.Errorf("missing column %q", col)
		}
	}
	batch := make([]store.Observation, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.store.InsertObservations(ctx, batch)
		if err != nil {
			return err
		}
		report.Inserted += n
		batch = batch[:0]
		return nil
	}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		obs, err := parseObservation(p, idx, row)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, obs)
		report.Rows++
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}
	return report, nil
}

// ImportMultiSelects reads name,country rows.
func (im *Importer) ImportMultiSelects(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	idx := headerIndex(rows[0])
	nameCol, okName := idx["name"]
	countryCol, okCountry := idx["country"]
	if !okName || !okCountry {
		return 0, errors.New("multiselect groups need name and country columns")
	}
	out := make([]store.MultiSelectRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name, country := cell(row, nameCol), cell(row, countryCol)
		if name == "" || country == "" {
			continue
		}
		out = append(out, store.MultiSelectRow{Name: name, Country: country})
	}
	return im.store.InsertMultiSelectGroups(ctx, out)
}

func parseObservation(p *dataset.Profile, idx map[string]int, row []string) (store.Observation, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok {
			return ""
		}
		return cell(row, i)
	}
	dim, ok := dataset.ParseDimension(get("dimension"))
	if !ok {
		return store.Observation{}, fmt.Errorf("unknown dimension %q", get("dimension"))
	}
	if _, ok := p.Dimension(dim); !ok {
		return store.Observation{}, fmt.Errorf("%w: %s", ErrUnknownDimension, dim)
	}
	year, err := strconv.Atoi(get("year"))
	if err != nil {
		return store.Observation{}, fmt.Errorf("invalid year %q", get("year"))
	}
	obs := store.Observation{
		Dataset:   p.Slug,
		Dimension: string(dim),
		Type:      get("type"),
		GroupType: get("group_type"),
		GroupName: get("group_name"),
		Category:  get("category"),
		Year:      year,
	}
	if obs.GroupName == "" {
		return store.Observation{}, errors.New("group_name is empty")
	}
	if obs.GroupType == "" {
		obs.GroupType = "country"
	}
	if raw := get("value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return store.Observation{}, fmt.Errorf("invalid value %q", raw)
		}
		obs.Value = &v
	}
	return obs, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key != "" {
			idx[key] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
