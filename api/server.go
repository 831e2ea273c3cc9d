package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/auth"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
	"github.com/dataforgoodfr/shiftdataportal-sub001/tasks"
)

type Server struct {
	cfg         *config.AppConfig
	router      chi.Router
	httpServer  *http.Server
	logger      *utils.Logger
	db          *sql.DB
	catalog     *dataset.Catalog
	series      *series.Client
	codecs      urlstate.Codecs
	history     *urlstate.History
	screenshots *screenshot.Service
	warmer      *tasks.CacheWarmer
	adminKey    *auth.KeyHash
}

func NewServer(cfg *config.AppConfig, logger *utils.Logger, deps ServerDeps) *Server {
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	catalog := deps.Catalog
	if catalog == nil && deps.Series != nil {
		catalog = deps.Series.Catalog()
	}
	if catalog == nil {
		c, err := dataset.DefaultCatalog()
		if err != nil {
			logger.Fatalf("dataset catalog: %v", err)
		}
		catalog = c
	}
	client := deps.Series
	if client == nil {
		client = series.NewClient(catalog, store.NewObservationsStore(deps.DB), series.Options{
			CacheSize: cfg.Cache.Size,
			CacheTTL:  cfg.Cache.TTL(),
		}, logger)
	}
	history := deps.History
	if history == nil {
		history = urlstate.NewHistory(cfg.Sync.HistorySize, time.Duration(cfg.Sync.HistoryTTLMin)*time.Minute, time.Duration(cfg.Sync.DebounceMS)*time.Millisecond)
	}
	s := &Server{
		cfg:         cfg,
		router:      chi.NewRouter(),
		logger:      logger,
		db:          deps.DB,
		catalog:     catalog,
		series:      client,
		codecs:      urlstate.NewCodecs(catalog, logger),
		history:     history,
		screenshots: deps.Screenshots,
		warmer:      deps.Warmer,
	}
	if cfg.Admin.Enabled() {
		key, err := auth.ParseKeyHash(cfg.Admin.KeyHash, cfg.Admin.KeySalt)
		if err != nil {
			logger.Errorf("admin key: %v; admin routes disabled", err)
		} else {
			s.adminKey = key
		}
	}
	s.registerRoutes()
	s.registerObservabilityRoutes()
	return s
}

func (s *Server) Config() *config.AppConfig {
	return s.cfg
}

// Handler is the root router, exposed for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	writeTimeout := 15 * time.Second
	if s.cfg.Screenshot.TimeoutSec > 0 {
		writeTimeout += time.Duration(s.cfg.Screenshot.TimeoutSec) * time.Second
	}
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
	}
	s.logger.Printf("listening on %s", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.history.Flush()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
