package pkce

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pkce:state:"

// RedisStore backs the challenge store with Redis for multi-instance
// deployments where the callback may land on a different process than the
// one that issued the state. Expiry is delegated to Redis key TTLs, and
// GETDEL keeps the read-and-remove atomic.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *RedisStore) Issue(ctx context.Context) (*Challenge, error) {
	ch, err := newChallenge()
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, keyPrefix+ch.State, ch.CodeVerifier, TTL).Err(); err != nil {
		return nil, fmt.Errorf("pkce: store state: %w", err)
	}
	return ch, nil
}

func (s *RedisStore) Consume(ctx context.Context, state string) (string, error) {
	verifier, err := s.rdb.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("pkce: consume state: %w", err)
	}
	return verifier, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
