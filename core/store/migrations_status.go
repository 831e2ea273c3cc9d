package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"
)

type MigrationStatus struct {
	NowUTC time.Time `json:"now_utc"`

	LegacyDatabase bool  `json:"legacy_database"`
	HasGooseTable  bool  `json:"has_goose_table"`
	CurrentVersion int64 `json:"current_version"`
	LatestVersion  int64 `json:"latest_version"`
	HasPending     bool  `json:"has_pending"`
}

func GetMigrationStatus(ctx context.Context, db *sql.DB) (MigrationStatus, error) {
	now := time.Now().UTC()
	latest, err := latestGooseMigrationVersion()
	if err != nil {
		return MigrationStatus{NowUTC: now}, err
	}
	if db == nil {
		return MigrationStatus{NowUTC: now, LatestVersion: latest}, fmt.Errorf("nil db")
	}

	hasGoose, err := tableExists(ctx, db, gooseTable)
	if err != nil {
		return MigrationStatus{NowUTC: now, LatestVersion: latest}, err
	}
	legacy, err := isLegacyDatabase(ctx, db, hasGoose)
	if err != nil {
		return MigrationStatus{NowUTC: now, LatestVersion: latest}, err
	}
	if legacy {
		return MigrationStatus{
			NowUTC:         now,
			LegacyDatabase: true,
			LatestVersion:  latest,
			HasPending:     true,
		}, nil
	}

	current := int64(0)
	if hasGoose {
		cur, derr := getGooseDBVersion(ctx, db)
		if derr != nil {
			return MigrationStatus{NowUTC: now, LatestVersion: latest}, derr
		}
		current = cur
	}
	return MigrationStatus{
		NowUTC:         now,
		HasGooseTable:  hasGoose,
		CurrentVersion: current,
		LatestVersion:  latest,
		HasPending:     latest > current,
	}, nil
}

func isLegacyDatabase(ctx context.Context, db *sql.DB, hasGoose bool) (bool, error) {
	if hasGoose {
		return false, nil
	}
	n, err := userTableCount(ctx, db)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func getGooseDBVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version_id), 0) FROM `+gooseTable).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// latestGooseMigrationVersion reads the numeric prefix of the embedded files
// (00003_dataset_notes.sql -> 3).
func latestGooseMigrationVersion() (int64, error) {
	entries, err := fs.Glob(gooseMigrationsFS, migrationsDir+"/*.sql")
	if err != nil {
		return 0, err
	}
	var max int64
	for _, p := range entries {
		prefix, _, _ := strings.Cut(path.Base(p), "_")
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}
