package ratelimit

import (
	"strings"

	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/dyvilcenter/backoffice/internal/settings"
)

// Settings is the normalized throttle configuration.
type Settings struct {
	Limit         int
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SettingsFromConfig normalizes the throttle section of the application config.
// Redis is used only when an address is configured.
func SettingsFromConfig(cfg config.ThrottleConfig) Settings {
	out := Settings{
		Limit:         cfg.RequestsPerSecond,
		RedisAddr:     strings.TrimSpace(cfg.RedisAddr),
		RedisPassword: strings.TrimSpace(cfg.RedisPassword),
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   strings.TrimSpace(cfg.RedisPrefix),
	}
	if out.Limit < 0 {
		out.Limit = 0
	}
	if out.RedisDB < 0 {
		out.RedisDB = 0
	}
	if out.RedisPrefix == "" {
		out.RedisPrefix = settings.DefaultThrottleRedisPrefix
	}
	out.RedisEnabled = out.RedisAddr != ""
	return out
}
