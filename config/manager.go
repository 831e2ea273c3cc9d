package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultConfigPath  = "config/app.yaml"
	defaultChartHeight = "75rem"
	envPrefix          = "DATAPORTAL_"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultChartHeight is the embed height used when the URL carries none.
func DefaultChartHeight() string {
	return defaultChartHeight
}

func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("ENV", "APP_ENV"); v != "" {
		cfg.AppEnv = strings.TrimSpace(v)
	}
	if v := getEnv("PORT", envPrefix+"PORT"); v != "" {
		cfg.ListenAddr = listenAddrWithPort(cfg.ListenAddr, v)
	}
	if v := getEnv("DATABASE_URL"); v != "" {
		cfg.DBURL = strings.TrimSpace(v)
	}
	if v := getEnv("CLIENT_URI"); v != "" {
		cfg.ClientURI = strings.TrimSpace(v)
	}
	if v := getEnv("DB_HOST"); v != "" && cfg.DBURL == "" {
		cfg.DBURL = postgresURLFromParts(v, getEnv("DB_USER"), getEnv("DB_PASSWORD"), getEnv("DB_NAME"))
	}
	if v := getEnv("CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.DatasetsFile = strings.TrimSpace(cfg.DatasetsFile)
	cfg.ClientURI = strings.TrimRight(strings.TrimSpace(cfg.ClientURI), "/")
	cfg.CORSOrigin = strings.TrimSpace(cfg.CORSOrigin)
	cfg.Scheduler.Cron = strings.TrimSpace(cfg.Scheduler.Cron)
	cfg.Screenshot.ChromePath = strings.TrimSpace(cfg.Screenshot.ChromePath)
	cfg.Observability.MetricsToken = strings.TrimSpace(cfg.Observability.MetricsToken)
	cfg.Admin.KeyHash = strings.TrimSpace(cfg.Admin.KeyHash)
	cfg.Admin.KeySalt = strings.TrimSpace(cfg.Admin.KeySalt)
	cfg.Admin.Pepper = strings.TrimSpace(cfg.Admin.Pepper)
	if cfg.DBDriver == "" {
		switch {
		case cfg.DBURL != "":
			cfg.DBDriver = "postgres"
		case cfg.DBPath != "":
			cfg.DBDriver = "sqlite"
		default:
			cfg.DBDriver = "postgres"
		}
	}
	if cfg.DBDriver == "pg" {
		cfg.DBDriver = "postgres"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0:8080"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "prod"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.ClientURI == "" {
		cfg.ClientURI = "http://" + loopbackAddr(cfg.ListenAddr)
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 15 * 60
	}
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = 512
	}
	if cfg.Scheduler.Cron == "" {
		cfg.Scheduler.Cron = "*/15 * * * *"
	}
	if cfg.Scheduler.IntervalSeconds <= 0 {
		cfg.Scheduler.IntervalSeconds = 60
	}
	if cfg.Screenshot.TimeoutSec <= 0 {
		cfg.Screenshot.TimeoutSec = 30
	}
	if cfg.Screenshot.SettleMS < 0 {
		cfg.Screenshot.SettleMS = 0
	}
	if cfg.Screenshot.Width <= 0 {
		cfg.Screenshot.Width = 1280
	}
	if cfg.Screenshot.Height <= 0 {
		cfg.Screenshot.Height = 1024
	}
	if cfg.Sync.DebounceMS <= 0 {
		cfg.Sync.DebounceMS = 300
	}
	if cfg.Sync.HistorySize <= 0 {
		cfg.Sync.HistorySize = 4096
	}
	if cfg.Sync.HistoryTTLMin <= 0 {
		cfg.Sync.HistoryTTLMin = 60
	}
}

func getEnv(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func resolveConfigPath() string {
	if v := getEnv("APP_CONFIG", envPrefix+"APP_CONFIG"); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultConfigPath
}

func listenAddrWithPort(currentAddr, portRaw string) string {
	port := strings.TrimSpace(portRaw)
	if port == "" {
		return currentAddr
	}
	if _, err := strconv.Atoi(port); err != nil {
		return currentAddr
	}
	host := "0.0.0.0"
	parts := strings.Split(strings.TrimSpace(currentAddr), ":")
	if len(parts) > 1 {
		host = strings.Join(parts[:len(parts)-1], ":")
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host + ":" + port
}

func loopbackAddr(listenAddr string) string {
	parts := strings.Split(listenAddr, ":")
	port := parts[len(parts)-1]
	if len(parts) < 2 || port == "" {
		port = "8080"
	}
	return "127.0.0.1:" + port
}

func postgresURLFromParts(host, user, password, name string) string {
	host = strings.TrimSpace(host)
	var b strings.Builder
	b.WriteString("postgres://")
	if user = strings.TrimSpace(user); user != "" {
		b.WriteString(user)
		if password != "" {
			b.WriteString(":" + password)
		}
		b.WriteString("@")
	}
	b.WriteString(host)
	if name = strings.TrimSpace(name); name != "" {
		b.WriteString("/" + name)
	}
	return b.String()
}
