package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizledger/internal/config"
)

func TestNilLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewWriteLimiter(config.Config{RateLimit: config.RateLimitConfig{Enabled: true}}, nil)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if limiter != nil {
		t.Fatal("expected nil limiter without a redis client")
	}
	if limiter.Enabled() {
		t.Fatal("nil limiter must not be enabled")
	}

	ctx := context.Background()
	res, err := limiter.AllowWrite(ctx, "10.0.0.1")
	if err != nil || !res.Allowed {
		t.Fatalf("expected allowed write, got %+v err=%v", res, err)
	}
	lease, err := limiter.HoldCheckout(ctx, "key-1")
	if err != nil || lease.Held() {
		t.Fatalf("expected no-op lease, got %+v err=%v", lease, err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestNewWriteLimiterValidatesRates(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, WriteRate: 0, WriteBurst: 5}}
	if _, err := NewWriteLimiter(cfg, client); err == nil {
		t.Fatal("expected error for zero write rate")
	}

	limiter, err := NewWriteLimiter(config.Config{}, client)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if limiter.Enabled() {
		t.Fatal("throttling should be off when disabled in config")
	}
	if limiter.lockTTL != 10*time.Second {
		t.Fatalf("expected default lock ttl, got %s", limiter.lockTTL)
	}
}

func TestParseBucketReply(t *testing.T) {
	res, err := parseBucketReply([]interface{}{int64(0), "0.5", int64(250)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Allowed || res.Remaining != 0 || res.RetryAfter != 250*time.Millisecond {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = parseBucketReply([]interface{}{int64(1), "3.75", int64(0)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.Allowed || res.Remaining != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := parseBucketReply([]interface{}{int64(1), 3}); err == nil {
		t.Fatal("expected error for short reply")
	}
	if _, err := parseBucketReply([]interface{}{"1", "3", int64(0)}); err == nil {
		t.Fatal("expected error for string flag")
	}
}

func TestBucketTTL(t *testing.T) {
	if got := bucketTTL(1, 5); got != 10*time.Second {
		t.Fatalf("expected 10s ttl, got %s", got)
	}
	if got := bucketTTL(100, 1); got != time.Second {
		t.Fatalf("expected 1s floor, got %s", got)
	}
}

func TestHoldCheckoutWithoutKeyIsNoop(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewWriteLimiter(config.Config{}, client)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	lease, err := limiter.HoldCheckout(context.Background(), "   ")
	if err != nil {
		t.Fatalf("expected no redis call for an empty key, got %v", err)
	}
	if lease.Held() {
		t.Fatal("empty key must not hold a lease")
	}
	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
}
