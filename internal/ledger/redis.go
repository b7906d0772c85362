package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moonuidesign/quotagate/internal/model"
)

// Redis is a Redis-backed ledger. Counters live in per-window keys that expire
// shortly after the window ends, so rollover needs no explicit reset.
type Redis struct {
	rdb    redisCmdable
	prefix string
}

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd
}

// NewRedis constructs a Redis-backed ledger.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "quota"}
}

// NewRedisWithCmdable constructs a Redis-backed ledger over a custom client.
func NewRedisWithCmdable(rdb redisCmdable) *Redis {
	return &Redis{rdb: rdb, prefix: "quota"}
}

func (l *Redis) counterKey(key string, action model.ActionKind, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", l.prefix, key, action, windowStart.UTC().Format("20060102"))
}

// Count reads consumed quota for the window; missing keys count as zero.
func (l *Redis) Count(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error) {
	n, err := l.rdb.Get(ctx, l.counterKey(key, action, windowStart)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Increment bumps the window counter and returns the new count. The expiry is
// set when the key is first created; an extra hour past window end covers
// clock skew between service instances.
func (l *Redis) Increment(ctx context.Context, key string, action model.ActionKind, windowStart time.Time) (int64, error) {
	ck := l.counterKey(key, action, windowStart)
	n, err := l.rdb.Incr(ctx, ck).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := l.rdb.ExpireAt(ctx, ck, WindowEnd(windowStart).Add(time.Hour)).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}
