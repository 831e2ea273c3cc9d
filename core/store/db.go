package store

import (
	"database/sql"
	"errors"
	"flag"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	switch Driver(cfg) {
	case DriverPostgres:
		if strings.TrimSpace(cfg.DBURL) == "" {
			return nil, errors.New("DATAPORTAL_DB_URL is required for postgres")
		}
		db, err := sql.Open(postgresDriverName, cfg.DBURL)
		if err != nil {
			logger.Errorf("db open failed: %v", err)
			return nil, err
		}
		logger.Printf("db open postgres")
		return db, nil
	case DriverSQLite:
		if !isTestRuntime() && !cfg.IsDev() {
			return nil, errors.New("sqlite driver is supported only in dev or go test runtime")
		}
		return OpenSQLite(cfg.DBPath, logger)
	default:
		return nil, errors.New("unsupported db driver: " + cfg.DBDriver)
	}
}

// OpenSQLite opens a local observations file. The importer uses it to
// build portable snapshots outside the server runtime.
func OpenSQLite(path string, logger *utils.Logger) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("DBPath is required for sqlite")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Errorf("db open failed: %v", err)
		return nil, err
	}
	logger.Printf("db open sqlite %s", path)
	return db, nil
}

// Driver resolves the configured driver name, defaulting to postgres.
func Driver(cfg *config.AppConfig) string {
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch driver {
	case "postgres", "pg", "postgresql":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "":
		if strings.TrimSpace(cfg.DBURL) == "" && strings.TrimSpace(cfg.DBPath) != "" {
			return DriverSQLite
		}
		return DriverPostgres
	}
	return driver
}

func isTestRuntime() bool {
	return flag.Lookup("test.v") != nil
}
