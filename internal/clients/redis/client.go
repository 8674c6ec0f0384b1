package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func ConfigFromEnv() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		Prefix:   envutil.String("REDIS_KEY_PREFIX", "tutor"),
	}
}

// Store wraps one go-redis client shared by the centrality cache and the
// learner lock.
type Store struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewFromEnv returns (nil, nil) when REDIS_ADDR is unset; callers treat a nil
// Store as "no cache, no lock".
func NewFromEnv(log *logger.Logger) (*Store, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Addr == "" {
		return nil, nil
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "tutor"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(log, rdb, cfg.Prefix), nil
}

func NewWithClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "tutor"
	}
	return &Store{log: log.With("client", "RedisStore"), rdb: rdb, prefix: prefix}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
