package config

import "time"

type AppConfig struct {
	ListenAddr    string              `yaml:"listen_addr" env:"DATAPORTAL_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	AppEnv        string              `yaml:"app_env" env:"DATAPORTAL_APP_ENV" env-default:"prod"`
	DBDriver      string              `yaml:"db_driver" env:"DATAPORTAL_DB_DRIVER"`
	DBURL         string              `yaml:"db_url" env:"DATAPORTAL_DB_URL"`
	DBPath        string              `yaml:"db_path" env:"DATAPORTAL_DB_PATH"`
	DatasetsFile  string              `yaml:"datasets_file" env:"DATAPORTAL_DATASETS_FILE"`
	ClientURI     string              `yaml:"client_uri" env:"DATAPORTAL_CLIENT_URI"`
	CORSOrigin    string              `yaml:"cors_origin" env:"DATAPORTAL_CORS_ORIGIN" env-default:"*"`
	Cache         CacheConfig         `yaml:"cache"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Screenshot    ScreenshotConfig    `yaml:"screenshot"`
	Sync          SyncConfig          `yaml:"sync"`
	Observability ObservabilityConfig `yaml:"observability"`
	Admin         AdminConfig         `yaml:"admin"`
}

func (c *AppConfig) IsDev() bool {
	if c == nil {
		return false
	}
	return c.AppEnv == "dev"
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_sec" env:"DATAPORTAL_CACHE_TTL_SEC" env-default:"900"`
	Size       int `yaml:"size" env:"DATAPORTAL_CACHE_SIZE" env-default:"512"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SchedulerConfig drives the cache warmer: the worker ticks every
// IntervalSeconds and runs when Cron says a run is due.
type SchedulerConfig struct {
	Enabled         bool   `yaml:"enabled" env:"DATAPORTAL_SCHEDULER_ENABLED"`
	Cron            string `yaml:"cron" env:"DATAPORTAL_SCHEDULER_CRON" env-default:"*/15 * * * *"`
	IntervalSeconds int    `yaml:"interval_seconds" env:"DATAPORTAL_SCHEDULER_INTERVAL_SECONDS" env-default:"60"`
}

type ScreenshotConfig struct {
	Enabled    bool   `yaml:"enabled" env:"DATAPORTAL_SCREENSHOT_ENABLED" env-default:"true"`
	TimeoutSec int    `yaml:"timeout_sec" env:"DATAPORTAL_SCREENSHOT_TIMEOUT_SEC" env-default:"30"`
	SettleMS   int    `yaml:"settle_ms" env:"DATAPORTAL_SCREENSHOT_SETTLE_MS" env-default:"500"`
	ChromePath string `yaml:"chrome_path" env:"DATAPORTAL_SCREENSHOT_CHROME_PATH"`
	Width      int    `yaml:"width" env:"DATAPORTAL_SCREENSHOT_WIDTH" env-default:"1280"`
	Height     int    `yaml:"height" env:"DATAPORTAL_SCREENSHOT_HEIGHT" env-default:"1024"`
}

type SyncConfig struct {
	DebounceMS    int `yaml:"debounce_ms" env:"DATAPORTAL_SYNC_DEBOUNCE_MS" env-default:"300"`
	HistorySize   int `yaml:"history_size" env:"DATAPORTAL_SYNC_HISTORY_SIZE" env-default:"4096"`
	HistoryTTLMin int `yaml:"history_ttl_min" env:"DATAPORTAL_SYNC_HISTORY_TTL_MIN" env-default:"60"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"DATAPORTAL_METRICS_ENABLED"`
	MetricsToken   string `yaml:"metrics_token" env:"DATAPORTAL_METRICS_TOKEN"`
}

// AdminConfig holds the argon2 hash of the key accepted on admin routes.
// Both KeyHash and KeySalt are produced by `portalctl hash-key`.
type AdminConfig struct {
	KeyHash string `yaml:"key_hash" env:"DATAPORTAL_ADMIN_KEY_HASH"`
	KeySalt string `yaml:"key_salt" env:"DATAPORTAL_ADMIN_KEY_SALT"`
	Pepper  string `yaml:"pepper" env:"DATAPORTAL_ADMIN_PEPPER"`
}

func (a AdminConfig) Enabled() bool {
	return a.KeyHash != "" && a.KeySalt != ""
}
