package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvListenAddr    = "LISTEN_ADDR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvTrustProxy    = "TRUST_PROXY"
	EnvAdminUsername = "BOOTSTRAP_ADMIN_USERNAME"
	EnvAdminPassword = "BOOTSTRAP_ADMIN_PASSWORD"
	EnvThrottleRPS   = "THROTTLE_RPS"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
)

// defaultListenAddr is used when neither file nor env set an address.
const defaultListenAddr = ":8080"

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file, or DB_CONNECTION)")

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath  string         `yaml:"-"`
	ListenAddr  string         `yaml:"listen-addr"`
	DatabaseDSN string         `yaml:"database-dsn"`
	Database    DatabaseConfig `yaml:"database"`
	LogLevel    string         `yaml:"log-level"`
	TrustProxy  bool           `yaml:"trust-proxy"`
	Bootstrap   BootstrapAdmin `yaml:"bootstrap-admin"`
	Throttle    ThrottleConfig `yaml:"throttle"`
}

// DatabaseConfig is the nested database section.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// BootstrapAdmin holds credentials for the first administrator.
type BootstrapAdmin struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ThrottleConfig holds per-IP request throttle settings.
type ThrottleConfig struct {
	RequestsPerSecond int    `yaml:"requests-per-second"`
	RedisAddr         string `yaml:"redis-addr"`
	RedisPassword     string `yaml:"redis-password"`
	RedisDB           int    `yaml:"redis-db"`
	RedisPrefix       string `yaml:"redis-prefix"`
}

// Load resolves configuration from an optional .env file, the YAML config file
// and environment overrides, in that order of increasing precedence.
func Load(configPath string) (AppConfig, error) {
	if errEnv := godotenv.Load(); errEnv != nil && !errors.Is(errEnv, os.ErrNotExist) {
		log.WithError(errEnv).Warn("config: .env file ignored")
	}

	if strings.TrimSpace(configPath) == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	cfg := AppConfig{ConfigPath: ResolveConfigPath(configPath)}

	data, errRead := os.ReadFile(cfg.ConfigPath)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return AppConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return AppConfig{}, fmt.Errorf("read config file: %w", errRead)
	}

	applyEnv(&cfg)

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Throttle.RequestsPerSecond < 0 {
		cfg.Throttle.RequestsPerSecond = 0
	}
	if cfg.Throttle.RedisDB < 0 {
		cfg.Throttle.RedisDB = 0
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDBConnection)); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvListenAddr)); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTrustProxy)); v != "" {
		if parsed, errParse := strconv.ParseBool(v); errParse == nil {
			cfg.TrustProxy = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAdminUsername)); v != "" {
		cfg.Bootstrap.Username = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		cfg.Bootstrap.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvThrottleRPS)); v != "" {
		if parsed, errParse := strconv.Atoi(v); errParse == nil {
			cfg.Throttle.RequestsPerSecond = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Throttle.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Throttle.RedisPassword = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisDB)); v != "" {
		if parsed, errParse := strconv.Atoi(v); errParse == nil {
			cfg.Throttle.RedisDB = parsed
		}
	}
}

// DSN returns the effective database DSN.
func (c AppConfig) DSN() (string, error) {
	if dsn := strings.TrimSpace(c.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}
