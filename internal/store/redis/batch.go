package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stackline/tickd/internal/index"
)

// Batch accumulates mutations to be applied atomically by Store.Apply.
// The zero value is ready to use.
type Batch struct {
	ops []func(ctx context.Context, pipe redis.Pipeliner)
}

// Len returns the number of queued mutations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// HSet queues a hash-field write.
func (b *Batch) HSet(key string, fields map[string]string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.HSet(ctx, key, fields)
	})
}

// Del queues key deletions.
func (b *Batch) Del(keys ...string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Del(ctx, keys...)
	})
}

// SAdd queues a set-membership addition.
func (b *Batch) SAdd(key, member string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.SAdd(ctx, key, member)
	})
}

// SRem queues a set-membership removal.
func (b *Batch) SRem(key, member string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.SRem(ctx, key, member)
	})
}

// ZAdd queues a sorted-set upsert.
func (b *Batch) ZAdd(key string, score float64, member string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	})
}

// ZRem queues a sorted-set removal.
func (b *Batch) ZRem(key, member string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.ZRem(ctx, key, member)
	})
}

// Expire queues a finite expiry on key.
func (b *Batch) Expire(key string, ttl time.Duration) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Expire(ctx, key, ttl)
	})
}

// Persist queues clearing any expiry on key.
func (b *Batch) Persist(key string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Persist(ctx, key)
	})
}

// IndexOps queues index-maintainer operations in order.
func (b *Batch) IndexOps(ops []index.Op) {
	for _, op := range ops {
		switch op.Kind {
		case index.SetAdd:
			b.SAdd(op.Key, op.Member)
		case index.SetRemove:
			b.SRem(op.Key, op.Member)
		case index.ZAdd:
			b.ZAdd(op.Key, op.Score, op.Member)
		case index.ZRemove:
			b.ZRem(op.Key, op.Member)
		}
	}
}
