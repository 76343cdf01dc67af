package wishes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guards one like toggle per wish. TryLock never blocks: ok is false
// when the wish is already locked.
type Locker interface {
	TryLock(ctx context.Context, id int64) (unlock func(), ok bool, err error)
}

// MemoryLocker serializes toggles within one process.
type MemoryLocker struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{active: make(map[int64]struct{})}
}

func (l *MemoryLocker) TryLock(_ context.Context, id int64) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.active[id]; busy {
		return nil, false, nil
	}
	l.active[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, id)
			l.mu.Unlock()
		})
	}, true, nil
}

// LockTTL bounds how long a crashed holder keeps a wish locked.
const LockTTL = 10 * time.Second

const lockKeyPrefix = "wedding:wish-like:"

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares toggle locks between server instances.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: LockTTL}
}

func (l *RedisLocker) TryLock(ctx context.Context, id int64) (func(), bool, error) {
	key := fmt.Sprintf("%s%d", lockKeyPrefix, id)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire like lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be done.
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
		})
	}, true, nil
}
