package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
)

type cachedCentrality struct {
	Dependents int `json:"d"`
	Children   int `json:"c"`
}

// GetCentrality returns cached entries and the ids that were not cached.
func (s *Store) GetCentrality(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]keystone.Centrality, []uuid.UUID, error) {
	hits := make(map[uuid.UUID]keystone.Centrality, len(ids))
	if s == nil || len(ids) == 0 {
		return hits, ids, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("centrality", id.String())
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return hits, ids, err
	}
	var missing []uuid.UUID
	for i, id := range ids {
		raw, ok := vals[i].(string)
		if !ok {
			missing = append(missing, id)
			continue
		}
		var c cachedCentrality
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			missing = append(missing, id)
			continue
		}
		hits[id] = keystone.Centrality{DependentCount: c.Dependents, ChildCount: c.Children}
	}
	return hits, missing, nil
}

func (s *Store) SetCentrality(ctx context.Context, values map[uuid.UUID]keystone.Centrality, ttl time.Duration) error {
	if s == nil || len(values) == 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for id, c := range values {
		raw, err := json.Marshal(cachedCentrality{Dependents: c.DependentCount, Children: c.ChildCount})
		if err != nil {
			return err
		}
		pipe.Set(ctx, s.key("centrality", id.String()), raw, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateCentrality drops every cached entry for ids, used after a graph sync.
func (s *Store) InvalidateCentrality(ctx context.Context, ids []uuid.UUID) error {
	if s == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("centrality", id.String())
	}
	return s.rdb.Del(ctx, keys...).Err()
}
