package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEASE
// ══════════════════════════════════════════════════════════════════════════════

// extendScript prolongs the lease only while it still carries our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// releaseScript deletes the lease only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a token-guarded lock with a TTL. The holder re-acquires it every
// cycle; if the holder dies, the key expires and another instance takes over.
type Lease struct {
	cache  *Cache
	key    string
	token  string
	ttl    time.Duration
	logger *slog.Logger

	mu   sync.Mutex
	held bool
}

// NewLease creates a lease on LockKey(name). ttl should outlive one cycle
// plus one wait, so a healthy holder never loses it between cycles.
func NewLease(cache *Cache, name string, ttl time.Duration, logger *slog.Logger) *Lease {
	if logger == nil {
		logger = slog.Default()
	}
	token := uuid.NewString()
	return &Lease{
		cache:  cache,
		key:    LockKey(name),
		token:  token,
		ttl:    ttl,
		logger: logger.With("component", "lease", "key", LockKey(name), "token", token),
	}
}

// Acquire takes the lease or extends it when this process already holds it.
// It returns false when another process holds it.
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.cache.SetNX(ctx, l.key, l.token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("lease acquire: %w", err)
	}
	if ok {
		if !l.held {
			l.logger.Info("lease acquired", "ttl", l.ttl)
		}
		l.held = true
		return true, nil
	}

	extended, err := extendScript.Run(ctx, l.cache.Client(), []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("lease extend: %w", err)
	}

	if extended == 0 {
		if l.held {
			l.logger.Warn("lease lost to another holder")
		}
		l.held = false
		return false, nil
	}

	l.held = true
	return true, nil
}

// Release deletes the lease if this process still holds it.
func (l *Lease) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	deleted, err := releaseScript.Run(ctx, l.cache.Client(), []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("lease release: %w", err)
	}
	if deleted > 0 {
		l.logger.Info("lease released")
	}
	l.held = false
	return nil
}

// Held reports whether the last Acquire succeeded.
func (l *Lease) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Token returns this process's lease token.
func (l *Lease) Token() string {
	return l.token
}
