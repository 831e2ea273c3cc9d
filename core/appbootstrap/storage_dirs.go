package appbootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

// ensureStorageDirs creates the parent directory of the sqlite file.
func ensureStorageDirs(cfg *config.AppConfig, logger *utils.Logger) error {
	if cfg == nil || store.Driver(cfg) != store.DriverSQLite {
		return nil
	}
	p := strings.TrimSpace(cfg.DBPath)
	if p == "" || p == ":memory:" || strings.HasPrefix(p, "file:") {
		return nil
	}
	dir := filepath.Dir(p)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Errorf("storage dir init failed name=sqlite path=%s: %v", dir, err)
		return err
	}
	return nil
}
