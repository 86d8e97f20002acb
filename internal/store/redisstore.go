package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stackit-qa/stackit-client/internal/credential"
)

const defaultRedisPrefix = "stackit:credentials:"

// RedisStore keeps each profile's pair in a Redis hash with the fields access_token and
// refresh_token.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a Redis backed credential store. An empty prefix uses
// "stackit:credentials:".
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient opens a client for addr and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", addr, err)
	}
	return client, nil
}

// Load reads profile's hash. A missing key yields a zero pair.
func (s *RedisStore) Load(ctx context.Context, profile string) (credential.Pair, error) {
	fields, err := s.client.HGetAll(ctx, s.key(profile)).Result()
	if err != nil {
		return credential.Pair{}, fmt.Errorf("redis store: load %s: %w", profile, err)
	}
	return credential.Pair{
		Access:  fields[credential.AccessTokenKey],
		Refresh: fields[credential.RefreshTokenKey],
	}, nil
}

// Save writes both fields in one HSET.
func (s *RedisStore) Save(ctx context.Context, profile string, pair credential.Pair) error {
	err := s.client.HSet(ctx, s.key(profile),
		credential.AccessTokenKey, pair.Access,
		credential.RefreshTokenKey, pair.Refresh,
	).Err()
	if err != nil {
		return fmt.Errorf("redis store: save %s: %w", profile, err)
	}
	return nil
}

// Delete removes profile's hash.
func (s *RedisStore) Delete(ctx context.Context, profile string) error {
	if err := s.client.Del(ctx, s.key(profile)).Err(); err != nil {
		return fmt.Errorf("redis store: delete %s: %w", profile, err)
	}
	return nil
}

func (s *RedisStore) key(profile string) string {
	return s.prefix + profile
}

var _ credential.Backend = (*RedisStore)(nil)
