package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizledger/internal/config"
)

const keyWriteClient = "bizledger:write:client:%s"

// ErrLocked is returned when another request holds the same idempotency key.
var ErrLocked = errors.New("idempotency_key_in_use")

// WriteLimiter throttles mutating requests per client and serialises
// checkouts that share an idempotency key. A nil limiter allows everything.
type WriteLimiter struct {
	client  *redis.Client
	bucket  *TokenBucket
	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewWriteLimiter(cfg config.Config, client *redis.Client) (*WriteLimiter, error) {
	limitCfg := cfg.RateLimit
	if client == nil {
		return nil, nil
	}
	if limitCfg.Enabled && (limitCfg.WriteRate <= 0 || limitCfg.WriteBurst <= 0) {
		return nil, errors.New("write rate limit must be positive")
	}

	lockTTL := time.Duration(limitCfg.LockTTLMillis) * time.Millisecond
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}

	limiter := &WriteLimiter{
		client:  client,
		lockTTL: lockTTL,
	}
	if limitCfg.Enabled {
		limiter.bucket = NewTokenBucket(client)
		limiter.rate = limitCfg.WriteRate
		limiter.burst = limitCfg.WriteBurst
	}
	return limiter, nil
}

// Enabled reports whether write throttling is active.
func (l *WriteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *WriteLimiter) AllowWrite(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWriteClient, clientKey), l.rate, l.burst)
}

// HoldCheckout leases the checkout slot for an idempotency key. It returns
// ErrLocked while another checkout holds the same key. Without redis, or
// without a key, the returned lease is a no-op.
func (l *WriteLimiter) HoldCheckout(ctx context.Context, idempotencyKey string) (Lease, error) {
	if l == nil || l.client == nil {
		return Lease{}, nil
	}
	return takeLease(ctx, l.client, idempotencyKey, l.lockTTL)
}
