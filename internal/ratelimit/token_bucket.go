package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// writeBucket refills at ARGV[1] tokens per second up to ARGV[2] and spends
// one token per call. It replies {allowed, remaining, retry_after_ms}, with
// remaining as a string so fractional tokens survive the reply conversion.
var writeBucket = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
if now > ts then
  tokens = math.min(burst, tokens + ((now - ts) / 1000) * rate)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil(((1 - tokens) / rate) * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), wait}
`)

// TokenBucket is a per-key bucket kept in redis so every API instance draws
// from the same allowance.
type TokenBucket struct {
	client *redis.Client
}

// Result describes one write admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client}
}

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	switch {
	case t == nil || t.client == nil:
		return nil, errors.New("token bucket has no redis client")
	case key == "":
		return nil, errors.New("token bucket key is empty")
	case rate <= 0 || burst <= 0:
		return nil, fmt.Errorf("token bucket needs a positive rate and burst, got %v/%d", rate, burst)
	}

	reply, err := writeBucket.Run(ctx, t.client, []string{key},
		rate, burst, bucketTTL(rate, burst).Milliseconds(),
	).Slice()
	if err != nil {
		return nil, err
	}
	res, err := parseBucketReply(reply)
	if err != nil {
		return nil, err
	}
	res.Limit = burst
	return res, nil
}

func parseBucketReply(reply []interface{}) (*Result, error) {
	if len(reply) != 3 {
		return nil, fmt.Errorf("token bucket reply has %d fields", len(reply))
	}
	allowed, ok := reply[0].(int64)
	if !ok {
		return nil, fmt.Errorf("token bucket allowed flag is %T", reply[0])
	}
	raw, ok := reply[1].(string)
	if !ok {
		return nil, fmt.Errorf("token bucket remaining is %T", reply[1])
	}
	remaining, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("token bucket remaining: %w", err)
	}
	waitMillis, ok := reply[2].(int64)
	if !ok {
		return nil, fmt.Errorf("token bucket wait is %T", reply[2])
	}
	return &Result{
		Allowed:    allowed == 1,
		Remaining:  int(math.Floor(remaining)),
		RetryAfter: time.Duration(waitMillis) * time.Millisecond,
	}, nil
}

// bucketTTL keeps idle buckets around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil(float64(burst) / rate * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}
