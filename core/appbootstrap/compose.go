package appbootstrap

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api"
	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
	"github.com/dataforgoodfr/shiftdataportal-sub001/tasks"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	history    *urlstate.History
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	catalog, err := dataset.LoadCatalog(cfg.DatasetsFile)
	if err != nil {
		return nil, fmt.Errorf("datasets: %w", err)
	}
	client := series.NewClient(catalog, store.NewObservationsStore(db), series.Options{
		CacheSize: cfg.Cache.Size,
		CacheTTL:  cfg.Cache.TTL(),
	}, logger)
	history := urlstate.NewHistory(
		cfg.Sync.HistorySize,
		time.Duration(cfg.Sync.HistoryTTLMin)*time.Minute,
		time.Duration(cfg.Sync.DebounceMS)*time.Millisecond,
	)

	var shots *screenshot.Service
	if cfg.Screenshot.Enabled {
		launcher := screenshot.ChromeLauncher{
			ExecPath: cfg.Screenshot.ChromePath,
			Width:    cfg.Screenshot.Width,
			Height:   cfg.Screenshot.Height,
			Settle:   time.Duration(cfg.Screenshot.SettleMS) * time.Millisecond,
		}
		shots = screenshot.NewService(cfg.ClientURI, time.Duration(cfg.Screenshot.TimeoutSec)*time.Second, launcher, logger)
	}

	out := &runtimeComposition{history: history}
	var warmer *tasks.CacheWarmer
	if cfg.Scheduler.Enabled {
		warmer, err = tasks.NewCacheWarmer(cfg.Scheduler, client, logger)
		if err != nil {
			return nil, err
		}
		out.workers = append(out.workers, warmer)
	}
	out.serverDeps = api.ServerDeps{
		DB:          db,
		Catalog:     catalog,
		Series:      client,
		History:     history,
		Screenshots: shots,
		Warmer:      warmer,
	}
	return out, nil
}
