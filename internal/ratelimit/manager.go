// Package ratelimit throttles requests per client address, sharing counters
// through Redis when configured and falling back to process memory.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

var errRedisConnecting = errors.New("ratelimit: redis connect in progress")

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// Manager routes checks to Redis while it is healthy and to memory otherwise.
type Manager struct {
	settings       Settings
	nowFn          func() time.Time
	memoryLimiter  Limiter
	newRedisClient RedisClientFactory

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	redisClient  *redis.Client
	connecting   bool
	breakerUntil time.Time
}

// NewManager constructs a Manager. Nil dependencies get defaults.
func NewManager(settings Settings, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &Manager{
		settings:       settings,
		nowFn:          nowFn,
		memoryLimiter:  NewMemoryLimiter(),
		newRedisClient: newRedisClient,
	}
}

// Enabled reports whether a positive limit is configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.settings.Limit > 0
}

// AllowIP checks the per-second budget of a client address.
func (m *Manager) AllowIP(ctx context.Context, ip string) (Result, error) {
	if !m.Enabled() {
		return Result{Allowed: true}, nil
	}
	return m.Allow(ctx, KeyForIP(ip), m.settings.Limit)
}

// Allow checks key against limit using the best available backend.
func (m *Manager) Allow(ctx context.Context, key string, limit int) (Result, error) {
	if m == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()
	if m.settings.RedisEnabled {
		if result, ok := m.allowRedis(ctx, key, limit, now); ok {
			return result, nil
		}
	}
	return m.memoryLimiter.Allow(ctx, key, limit, now)
}

// Close releases the Redis client, if any.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisClient == nil {
		return nil
	}
	err := m.redisClient.Close()
	m.redisClient = nil
	m.redisLimiter = nil
	return err
}

func (m *Manager) allowRedis(ctx context.Context, key string, limit int, now time.Time) (Result, bool) {
	if m.breakerActive(now) {
		return Result{}, false
	}
	limiter, errEnsure := m.ensureRedis(ctx)
	if errEnsure != nil {
		if !errors.Is(errEnsure, errRedisConnecting) {
			m.tripBreaker(errEnsure, now)
		}
		return Result{}, false
	}
	result, errAllow := limiter.Allow(ctx, key, limit, now)
	if errAllow != nil {
		m.tripBreaker(errAllow, now)
		return Result{}, false
	}
	return result, true
}

func (m *Manager) breakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("throttle: redis unavailable, falling back to memory")
}

// ensureRedis connects lazily. The ping runs outside m.mu; callers arriving
// while a connect is in flight get errRedisConnecting and use memory.
func (m *Manager) ensureRedis(ctx context.Context) (*RedisLimiter, error) {
	m.mu.Lock()
	if m.redisLimiter != nil {
		limiter := m.redisLimiter
		m.mu.Unlock()
		return limiter, nil
	}
	if m.connecting {
		m.mu.Unlock()
		return nil, errRedisConnecting
	}
	m.connecting = true
	m.mu.Unlock()

	client := m.newRedisClient(&redis.Options{
		Addr:     m.settings.RedisAddr,
		Password: m.settings.RedisPassword,
		DB:       m.settings.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	errPing := client.Ping(ctxPing).Err()
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.connecting = false
	if errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.redisClient = client
	m.redisLimiter = NewRedisLimiter(client, m.settings.RedisPrefix)
	return m.redisLimiter, nil
}
