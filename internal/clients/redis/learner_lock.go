package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("learner lock held")

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockLearner takes a short exclusive lease on learnerID. The returned
// release only deletes the key if this caller still owns it.
func (s *Store) LockLearner(ctx context.Context, learnerID uuid.UUID, ttl time.Duration) (func(), error) {
	if s == nil {
		return func() {}, nil
	}
	key := s.key("lock", "learner", learnerID.String())
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, s.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			s.log.Warn("release learner lock failed", "learner_id", learnerID, "error", err)
		}
	}, nil
}
