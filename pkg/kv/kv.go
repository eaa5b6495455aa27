package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is a small JSON document store on Redis. Plain keys hold one
// marshaled record, list keys hold an append-only sequence of records.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + ":" + k }

// Get unmarshals the record at key into dst. The second return is false
// when the key does not exist; dst is left untouched in that case.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kv decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.key(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("kv del: %w", err)
	}
	return nil
}

// Append pushes one record onto the list at key. RPUSH is atomic per key,
// so concurrent appenders cannot corrupt or reorder existing entries.
func (s *Store) Append(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := s.rdb.RPush(ctx, s.key(key), raw).Err(); err != nil {
		return fmt.Errorf("kv append %s: %w", key, err)
	}
	return nil
}

// List returns every record in the list at key, in insertion order.
func (s *Store) List(ctx context.Context, key string) ([][]byte, error) {
	vals, err := s.rdb.LRange(ctx, s.key(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Keys returns the store-relative keys matching pattern.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, s.key(pattern), 100).Result()
		if err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", pattern, err)
		}
		for _, k := range batch {
			out = append(out, k[len(s.prefix)+1:])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
