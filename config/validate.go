package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if driver == "" {
		driver = "postgres"
	}
	switch driver {
	case "postgres", "pg":
		if strings.TrimSpace(cfg.DBURL) == "" {
			return fmt.Errorf("db_url must be set for postgres driver")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return fmt.Errorf("db_path must be set for sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported db_driver: %s", cfg.DBDriver)
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if cfg.ClientURI != "" {
		u, err := url.Parse(cfg.ClientURI)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("client_uri must be an absolute url: %q", cfg.ClientURI)
		}
	}
	if cfg.Screenshot.TimeoutSec < 0 || cfg.Screenshot.TimeoutSec > 300 {
		return fmt.Errorf("screenshot.timeout_sec must be within 0..300")
	}
	if cfg.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Scheduler.Cron); err != nil {
			return fmt.Errorf("scheduler.cron is invalid: %w", err)
		}
	}
	if (cfg.Admin.KeyHash == "") != (cfg.Admin.KeySalt == "") {
		return fmt.Errorf("admin.key_hash and admin.key_salt must be set together")
	}
	if cfg.Observability.MetricsEnabled && !cfg.IsDev() && cfg.Observability.MetricsToken == "" {
		return fmt.Errorf("observability.metrics_token must be set outside APP_ENV=dev")
	}
	return nil
}
