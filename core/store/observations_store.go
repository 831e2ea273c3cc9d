package store

import (
	"context"
	"database/sql"
	"strings"
)

// Observation is one yearly value of a dataset dimension. Category holds
// the breakdown value (energy family, sector, gas) and is empty otherwise.
type Observation struct {
	Dataset   string   `json:"dataset"`
	Dimension string   `json:"dimension"`
	Type      string   `json:"type"`
	GroupType string   `json:"group_type"`
	GroupName string   `json:"group_name"`
	Category  string   `json:"category"`
	Year      int      `json:"year"`
	Value     *float64 `json:"value"`
}

// ObservationFilter narrows observation queries. Empty lists and zero years
// mean no restriction.
type ObservationFilter struct {
	Dataset    string
	Dimension  string
	Type       string
	GroupNames []string
	Categories []string
	YearStart  int
	YearEnd    int
}

// Point is a summed value keyed by year and by the grouping column.
type Point struct {
	Year  int
	Key   string
	Value *float64
}

type MultiSelectRow struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

const (
	GroupByCategory  = "category"
	GroupByGroupName = "group_name"
)

type ObservationsStore interface {
	Years(ctx context.Context, f ObservationFilter) ([]int, error)
	Points(ctx context.Context, f ObservationFilter, groupBy string) ([]Point, error)
	RankCountries(ctx context.Context, dataset, dimension, typ string, desc bool, limit int) ([]string, error)
	Categories(ctx context.Context, dataset, dimension, typ string) ([]string, error)
	DistinctGroups(ctx context.Context, dataset, groupType string) ([]string, error)
	Types(ctx context.Context, dataset string) ([]string, error)
	MultiSelectGroups(ctx context.Context) ([]MultiSelectRow, error)
	Note(ctx context.Context, dataset string) (string, error)
	InsertObservations(ctx context.Context, rows []Observation) (int, error)
	InsertMultiSelectGroups(ctx context.Context, rows []MultiSelectRow) (int, error)
	PutNote(ctx context.Context, dataset, body string) error
	DeleteDataset(ctx context.Context, dataset string) error
}

type observationsStore struct {
	db *sql.DB
}

func NewObservationsStore(db *sql.DB) ObservationsStore {
	return &observationsStore{db: db}
}

func (s *observationsStore) Years(ctx context.Context, f ObservationFilter) ([]int, error) {
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM observations WHERE `+where+` ORDER BY year ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		res = append(res, y)
	}
	return res, rows.Err()
}

func (s *observationsStore) Points(ctx context.Context, f ObservationFilter, groupBy string) ([]Point, error) {
	col := GroupByGroupName
	if groupBy == GroupByCategory {
		col = GroupByCategory
	}
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, `+col+`, SUM(value)
		FROM observations
		WHERE `+where+`
		GROUP BY year, `+col+`
		ORDER BY `+col+` ASC, year ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Point
	for rows.Next() {
		var p Point
		var v sql.NullFloat64
		if err := rows.Scan(&p.Year, &p.Key, &v); err != nil {
			return nil, err
		}
		if v.Valid {
			val := v.Float64
			p.Value = &val
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// RankCountries orders countries by their summed value at the latest year
// of the dimension.
func (s *observationsStore) RankCountries(ctx context.Context, dataset, dimension, typ string, desc bool, limit int) ([]string, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_name, SUM(value) AS total
		FROM observations
		WHERE dataset=? AND dimension=? AND type=? AND group_type='country' AND value IS NOT NULL
			AND year = (SELECT MAX(year) FROM observations WHERE dataset=? AND dimension=? AND type=?)
		GROUP BY group_name
		ORDER BY total `+order+`, group_name ASC
		LIMIT ?`, dataset, dimension, typ, dataset, dimension, typ, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var name string
		var total sql.NullFloat64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

// Categories lists breakdown values by total desc.
func (s *observationsStore) Categories(ctx context.Context, dataset, dimension, typ string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(value) AS total
		FROM observations
		WHERE dataset=? AND dimension=? AND type=? AND category <> ''
		GROUP BY category
		ORDER BY total DESC, category ASC`, dataset, dimension, typ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var name string
		var total sql.NullFloat64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

func (s *observationsStore) DistinctGroups(ctx context.Context, dataset, groupType string) ([]string, error) {
	return s.pluck(ctx, `
		SELECT DISTINCT group_name FROM observations
		WHERE dataset=? AND group_type=? AND group_name <> ''
		ORDER BY group_name ASC`, dataset, groupType)
}

func (s *observationsStore) Types(ctx context.Context, dataset string) ([]string, error) {
	return s.pluck(ctx, `
		SELECT DISTINCT type FROM observations
		WHERE dataset=? AND type <> ''
		ORDER BY type ASC`, dataset)
}

func (s *observationsStore) MultiSelectGroups(ctx context.Context) ([]MultiSelectRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, country FROM multiselect_groups ORDER BY name ASC, country ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []MultiSelectRow
	for rows.Next() {
		var r MultiSelectRow
		if err := rows.Scan(&r.Name, &r.Country); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *observationsStore) Note(ctx context.Context, dataset string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM dataset_notes WHERE dataset=?`, dataset).Scan(&body)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return body, err
}

func (s *observationsStore) InsertObservations(ctx context.Context, rows []Observation) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO observations(dataset, dimension, type, group_type, group_name, category, year, value)
		VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()
	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.Dataset, r.Dimension, r.Type, r.GroupType, r.GroupName, r.Category, r.Year, r.Value)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, tx.Commit()
}

func (s *observationsStore) InsertMultiSelectGroups(ctx context.Context, rows []MultiSelectRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, r := range rows {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO multiselect_groups(name, country) VALUES(?,?)`, r.Name, r.Country)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, tx.Commit()
}

func (s *observationsStore) PutNote(ctx context.Context, dataset, body string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_notes WHERE dataset=?`, dataset); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO dataset_notes(dataset, body) VALUES(?,?)`, dataset, body); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *observationsStore) DeleteDataset(ctx context.Context, dataset string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE dataset=?`, dataset)
	return err
}

func (s *observationsStore) pluck(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (f ObservationFilter) where() (string, []any) {
	clauses := []string{"dataset=?", "dimension=?", "type=?"}
	args := []any{f.Dataset, f.Dimension, f.Type}
	if len(f.GroupNames) > 0 {
		clauses = append(clauses, "group_name IN ("+placeholders(len(f.GroupNames))+")")
		for _, g := range f.GroupNames {
			args = append(args, g)
		}
	}
	if len(f.Categories) > 0 {
		clauses = append(clauses, "category IN ("+placeholders(len(f.Categories))+")")
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	if f.YearStart > 0 {
		clauses = append(clauses, "year >= ?")
		args = append(args, f.YearStart)
	}
	if f.YearEnd > 0 {
		clauses = append(clauses, "year <= ?")
		args = append(args, f.YearEnd)
	}
	return strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
