package api

import (
	"database/sql"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
	"github.com/dataforgoodfr/shiftdataportal-sub001/tasks"
)

// ServerDeps carries the services built at startup. Series and History are
// created from DB and config when nil; a nil Screenshots disables captures.
type ServerDeps struct {
	DB          *sql.DB
	Catalog     *dataset.Catalog
	Series      *series.Client
	History     *urlstate.History
	Screenshots *screenshot.Service
	Warmer      *tasks.CacheWarmer
}
