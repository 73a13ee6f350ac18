package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "ip:10.0.0.1", 3, now)
		if err != nil || !res.Allowed {
			t.Fatalf("hit %d: expected allowed, got %+v err=%v", i, res, err)
		}
		if res.Remaining != 2-i {
			t.Fatalf("hit %d: expected remaining=%d, got %d", i, 2-i, res.Remaining)
		}
	}
	res, _ := l.Allow(ctx, "ip:10.0.0.1", 3, now)
	if res.Allowed {
		t.Fatalf("expected fourth hit to be throttled")
	}
	if !res.Reset.Equal(time.Unix(1700000001, 0)) {
		t.Fatalf("expected reset at next second, got %s", res.Reset)
	}

	other, _ := l.Allow(ctx, "ip:10.0.0.2", 3, now)
	if !other.Allowed {
		t.Fatalf("expected other key to be allowed")
	}

	next, _ := l.Allow(ctx, "ip:10.0.0.1", 3, now.Add(time.Second))
	if !next.Allowed {
		t.Fatalf("expected new window to be allowed")
	}
	if l.Len() != 1 {
		t.Fatalf("expected stale keys swept, got %d keys", l.Len())
	}
}

func TestMemoryLimiter_NoLimit(t *testing.T) {
	l := NewMemoryLimiter()
	res, err := l.Allow(context.Background(), "ip:1", 0, time.Now())
	if err != nil || !res.Allowed {
		t.Fatalf("expected zero limit to allow, got %+v err=%v", res, err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected nothing tracked, got %d", l.Len())
	}
}

func TestManager_FallsBackToMemoryWhenRedisDown(t *testing.T) {
	now := time.Unix(1700000000, 0)
	dials := 0
	factory := func(opts *redis.Options) *redis.Client {
		dials++
		opts.Addr = "127.0.0.1:1"
		opts.DialTimeout = 100 * time.Millisecond
		opts.MaxRetries = -1
		return redis.NewClient(opts)
	}
	s := SettingsFromConfig(config.ThrottleConfig{RequestsPerSecond: 1, RedisAddr: "redis.invalid:6379"})
	m := NewManager(s, func() time.Time { return now }, factory)
	defer func() { _ = m.Close() }()

	first, err := m.AllowIP(context.Background(), "10.0.0.1")
	if err != nil || !first.Allowed {
		t.Fatalf("expected first hit allowed, got %+v err=%v", first, err)
	}
	second, err := m.AllowIP(context.Background(), "10.0.0.1")
	if err != nil || second.Allowed {
		t.Fatalf("expected second hit throttled by memory fallback, got %+v err=%v", second, err)
	}
	if dials != 1 {
		t.Fatalf("expected breaker to stop redial, got %d dials", dials)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.ThrottleConfig{RequestsPerSecond: -4, RedisDB: -1})
	if s.Limit != 0 || s.RedisDB != 0 || s.RedisEnabled {
		t.Fatalf("unexpected normalization: %+v", s)
	}
	if s.RedisPrefix != "backoffice:rl" {
		t.Fatalf("expected default prefix, got %q", s.RedisPrefix)
	}
	m := NewManager(s, nil, nil)
	if m.Enabled() {
		t.Fatalf("expected manager disabled without a limit")
	}
	res, err := m.AllowIP(context.Background(), "10.0.0.1")
	if err != nil || !res.Allowed {
		t.Fatalf("expected disabled manager to allow, got %+v err=%v", res, err)
	}
}

func TestKeyForIP(t *testing.T) {
	if got := KeyForIP(" 10.0.0.1 "); got != "ip:10.0.0.1" {
		t.Fatalf("expected ip:10.0.0.1, got %q", got)
	}
	if got := KeyForIP(""); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestManager_ConnectInFlightDoesNotBlockOtherCallers(t *testing.T) {
	now := time.Unix(1700000000, 0)
	entered := make(chan struct{})
	release := make(chan struct{})
	factory := func(opts *redis.Options) *redis.Client {
		close(entered)
		<-release
		opts.Addr = "127.0.0.1:1"
		opts.DialTimeout = 100 * time.Millisecond
		opts.MaxRetries = -1
		return redis.NewClient(opts)
	}
	s := SettingsFromConfig(config.ThrottleConfig{RequestsPerSecond: 5, RedisAddr: "redis.invalid:6379"})
	m := NewManager(s, func() time.Time { return now }, factory)
	defer func() { _ = m.Close() }()

	connectDone := make(chan struct{})
	go func() {
		defer close(connectDone)
		_, _ = m.AllowIP(context.Background(), "10.0.0.1")
	}()
	<-entered

	done := make(chan Result, 1)
	go func() {
		res, _ := m.AllowIP(context.Background(), "10.0.0.2")
		done <- res
	}()
	select {
	case res := <-done:
		if !res.Allowed {
			t.Fatalf("expected memory fallback to allow, got %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected caller not to wait on the in-flight redis connect")
	}

	close(release)
	<-connectDone
	if !m.breakerActive(now) {
		t.Fatalf("expected failed connect to trip the breaker")
	}
}
