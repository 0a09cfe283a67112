package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const keyCheckoutLease = "bizledger:checkout:lease:%s"

// releaseIfHolder deletes the lease only when it still carries our token, so
// an expired lease taken over by another checkout is left alone.
var releaseIfHolder = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a held checkout slot for one idempotency key. The zero Lease is
// valid and releases nothing.
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

// Release gives the slot back. It is safe to call more than once.
func (l Lease) Release(ctx context.Context) error {
	if l.client == nil || l.token == "" {
		return nil
	}
	return releaseIfHolder.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

// Held reports whether the lease guards a real redis key.
func (l Lease) Held() bool {
	return l.client != nil && l.token != ""
}

func takeLease(ctx context.Context, client *redis.Client, idempotencyKey string, ttl time.Duration) (Lease, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return Lease{}, nil
	}
	key := fmt.Sprintf(keyCheckoutLease, idempotencyKey)
	token := uuid.NewString()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return Lease{}, err
	}
	if !ok {
		return Lease{}, ErrLocked
	}
	return Lease{client: client, key: key, token: token}, nil
}
