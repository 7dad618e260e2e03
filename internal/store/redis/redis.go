// Package redis implements the fast index store adapter: per-ticket hash
// records, secondary-index sets, ordering sorted sets, and retention TTLs,
// with all mutations for one logical operation applied as a single atomic
// MULTI/EXEC batch.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the fast index store adapter.
type Store struct {
	rdb *redis.Client
}

// New connects to the fast store at addr.
func New(addr string) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping fast store: %w", err)
	}
	return nil
}

// Apply submits the batch as one MULTI/EXEC transaction. Either every
// mutation in the batch is applied or none are; a rejected batch leaves the
// store untouched and the caller may retry the whole operation.
func (s *Store) Apply(ctx context.Context, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range b.ops {
			op(ctx, pipe)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply fast-store batch: %w", err)
	}
	return nil
}

// ReadFields returns the hash record at key, or nil when absent.
func (s *Store) ReadFields(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// ReadManyFields pipelines hash reads for the given keys. Absent keys yield
// nil entries in the result, which is index-aligned with keys.
func (s *Store) ReadManyFields(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %d records: %w", len(keys), err)
	}
	out := make([]map[string]string, len(keys))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", keys[i], err)
		}
		if len(fields) > 0 {
			out[i] = fields
		}
	}
	return out, nil
}

// Members returns the members of a secondary-index set.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("members of %s: %w", key, err)
	}
	return members, nil
}

// Intersect returns the ids present in every given index set.
func (s *Store) Intersect(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 1 {
		return s.Members(ctx, keys[0])
	}
	members, err := s.rdb.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("intersect %d indexes: %w", len(keys), err)
	}
	return members, nil
}

// Range returns the members of an ordering sorted set, ascending by score,
// or descending when rev is set.
func (s *Store) Range(ctx context.Context, key string, rev bool) ([]string, error) {
	var cmd *redis.StringSliceCmd
	if rev {
		cmd = s.rdb.ZRevRange(ctx, key, 0, -1)
	} else {
		cmd = s.rdb.ZRange(ctx, key, 0, -1)
	}
	members, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", key, err)
	}
	return members, nil
}

// TTL reports the remaining expiry of key. A negative duration means the key
// has no expiry (-1) or does not exist (-2), matching the underlying store.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("ttl of %s: %w", key, err)
	}
	return d, nil
}

// Close releases the client connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}
