package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

func mustTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{DBDriver: "sqlite", DBPath: filepath.Join(dir, "tmp.db")}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func f64(v float64) *float64 { return &v }

func seedObservations(t *testing.T, s ObservationsStore) {
	t.Helper()
	rows := []Observation{
		{Dataset: "primary-energy", Dimension: "byEnergyFamily", Type: "Production", GroupType: "group", GroupName: "World", Category: "Oil", Year: 2000, Value: f64(10)},
		{Dataset: "primary-energy", Dimension: "byEnergyFamily", Type: "Production", GroupType: "group", GroupName: "World", Category: "Oil", Year: 2001, Value: f64(11)},
		{Dataset: "primary-energy", Dimension: "byEnergyFamily", Type: "Production", GroupType: "group", GroupName: "World", Category: "Coal", Year: 2001, Value: f64(30)},
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "country", GroupName: "France", Year: 2001, Value: f64(5)},
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "country", GroupName: "Spain", Year: 2001, Value: f64(3)},
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "country", GroupName: "Chad", Year: 2001, Value: nil},
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "country", GroupName: "Spain", Year: 1990, Value: f64(100)},
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "group", GroupName: "Europe", Year: 2001, Value: f64(8)},
	}
	n, err := s.InsertObservations(context.Background(), rows)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != len(rows) {
		t.Fatalf("expected %d inserted rows, got %d", len(rows), n)
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	db := mustTestDB(t)
	for _, table := range []string{"observations", "multiselect_groups", "dataset_notes"} {
		if _, err := db.Exec(`SELECT 1 FROM ` + table + ` LIMIT 1`); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
	if err := ApplyMigrations(context.Background(), db, nil); err != nil {
		t.Fatalf("second run must be a no-op: %v", err)
	}
	st, err := GetMigrationStatus(context.Background(), db)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.LatestVersion != 3 || st.CurrentVersion != 3 || st.HasPending || !st.HasGooseTable {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestMigrationsRejectLegacyDatabase(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "legacy.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE legacy (id INTEGER)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, nil); err == nil {
		t.Fatalf("expected legacy database to be rejected")
	}
	st, err := GetMigrationStatus(context.Background(), db)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.LegacyDatabase || !st.HasPending {
		t.Fatalf("expected legacy status, got %+v", st)
	}
}

func TestObservationsQueries(t *testing.T) {
	db := mustTestDB(t)
	s := NewObservationsStore(db)
	seedObservations(t, s)
	ctx := context.Background()

	f := ObservationFilter{Dataset: "primary-energy", Dimension: "byEnergyFamily", Type: "Production", GroupNames: []string{"World"}, Categories: []string{"Oil", "Coal"}}
	years, err := s.Years(ctx, f)
	if err != nil || !reflect.DeepEqual(years, []int{2000, 2001}) {
		t.Fatalf("unexpected years %v %v", years, err)
	}
	points, err := s.Points(ctx, f, GroupByCategory)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(points) != 3 || points[0].Key != "Coal" || *points[0].Value != 30 {
		t.Fatalf("unexpected points %+v", points)
	}

	f.YearStart = 2001
	years, _ = s.Years(ctx, f)
	if !reflect.DeepEqual(years, []int{2001}) {
		t.Fatalf("expected year filter, got %v", years)
	}

	cats, err := s.Categories(ctx, "primary-energy", "byEnergyFamily", "Production")
	if err != nil || !reflect.DeepEqual(cats, []string{"Coal", "Oil"}) {
		t.Fatalf("expected categories by total desc, got %v %v", cats, err)
	}

	top, err := s.RankCountries(ctx, "primary-energy", "total", "Production", true, 10)
	if err != nil || !reflect.DeepEqual(top, []string{"France", "Spain"}) {
		t.Fatalf("unexpected top countries %v %v", top, err)
	}
	flop, _ := s.RankCountries(ctx, "primary-energy", "total", "Production", false, 1)
	if !reflect.DeepEqual(flop, []string{"Spain"}) {
		t.Fatalf("unexpected flop countries %v", flop)
	}

	countries, _ := s.DistinctGroups(ctx, "primary-energy", "country")
	if !reflect.DeepEqual(countries, []string{"Chad", "France", "Spain"}) {
		t.Fatalf("unexpected countries %v", countries)
	}
	types, _ := s.Types(ctx, "primary-energy")
	if !reflect.DeepEqual(types, []string{"Production"}) {
		t.Fatalf("unexpected types %v", types)
	}
}

func TestObservationsInsertIgnoresDuplicates(t *testing.T) {
	db := mustTestDB(t)
	s := NewObservationsStore(db)
	seedObservations(t, s)
	n, err := s.InsertObservations(context.Background(), []Observation{
		{Dataset: "primary-energy", Dimension: "total", Type: "Production", GroupType: "country", GroupName: "France", Year: 2001, Value: f64(99)},
	})
	if err != nil || n != 0 {
		t.Fatalf("expected duplicate to be ignored, got %d %v", n, err)
	}
	if err := s.DeleteDataset(context.Background(), "primary-energy"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	years, _ := s.Years(context.Background(), ObservationFilter{Dataset: "primary-energy", Dimension: "total", Type: "Production"})
	if len(years) != 0 {
		t.Fatalf("expected empty dataset, got %v", years)
	}
}

func TestNotesAndMultiSelects(t *testing.T) {
	db := mustTestDB(t)
	s := NewObservationsStore(db)
	ctx := context.Background()
	if body, err := s.Note(ctx, "gas"); err != nil || body != "" {
		t.Fatalf("expected empty note, got %q %v", body, err)
	}
	if err := s.PutNote(ctx, "gas", "# Gas"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutNote(ctx, "gas", "# Gas v2"); err != nil {
		t.Fatalf("put again: %v", err)
	}
	if body, _ := s.Note(ctx, "gas"); body != "# Gas v2" {
		t.Fatalf("unexpected note %q", body)
	}
	if _, err := s.InsertMultiSelectGroups(ctx, []MultiSelectRow{{Name: "G7", Country: "France"}, {Name: "G7", Country: "Canada"}, {Name: "EU", Country: "Spain"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rows, _ := s.MultiSelectGroups(ctx)
	want := []MultiSelectRow{{Name: "EU", Country: "Spain"}, {Name: "G7", Country: "Canada"}, {Name: "G7", Country: "France"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestRewriteSQL(t *testing.T) {
	got := rewriteSQL(`INSERT OR IGNORE INTO t(a, b) VALUES(?, '?')`)
	if got != `INSERT INTO t(a, b) VALUES($1, '?') ON CONFLICT DO NOTHING` {
		t.Fatalf("unexpected rewrite %q", got)
	}
	if got := questionToDollar(`SELECT ? , 'it''s ?', ?`); got != `SELECT $1 , 'it''s ?', $2` {
		t.Fatalf("unexpected placeholders %q", got)
	}
}

func TestDriverResolution(t *testing.T) {
	cases := []struct {
		cfg  config.AppConfig
		want string
	}{
		{config.AppConfig{DBURL: "postgres://x"}, DriverPostgres},
		{config.AppConfig{DBPath: "a.db"}, DriverSQLite},
		{config.AppConfig{DBDriver: "pg"}, DriverPostgres},
		{config.AppConfig{DBDriver: "SQLite3"}, DriverSQLite},
		{config.AppConfig{}, DriverPostgres},
	}
	for _, tc := range cases {
		if got := Driver(&tc.cfg); got != tc.want {
			t.Fatalf("%+v: expected %s, got %s", tc.cfg, tc.want, got)
		}
	}
	if _, err := NewDB(&config.AppConfig{DBDriver: "mysql"}, nil); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
