package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dataforgoodfr/shiftdataportal-sub001/api"
	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

type Runtime struct {
	DB         *sql.DB
	Server     *api.Server
	background api.BackgroundController

	mu       sync.Mutex
	bgCancel context.CancelFunc
}

func InitRuntime(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := ensureStorageDirs(cfg, logger); err != nil {
		return nil, fmt.Errorf("storage dirs: %w", err)
	}
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("db init: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	composition, err := composeRuntime(cfg, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("compose runtime: %w", err)
	}
	srv := api.NewServer(cfg, logger, composition.serverDeps)
	return &Runtime{
		DB:         db,
		Server:     srv,
		background: api.BuildBackgroundController(composition.history, logger, composition.workers...),
	}, nil
}

func (r *Runtime) StartBackground(ctx context.Context) {
	if r == nil || r.background == nil {
		return
	}
	r.mu.Lock()
	if r.bgCancel != nil {
		r.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.bgCancel = cancel
	r.mu.Unlock()
	r.background.Start(runCtx)
}

func (r *Runtime) StopBackground(ctx context.Context) error {
	if r == nil || r.background == nil {
		return nil
	}
	r.mu.Lock()
	cancel := r.bgCancel
	r.bgCancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return r.background.Stop(ctx)
}

func (r *Runtime) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
