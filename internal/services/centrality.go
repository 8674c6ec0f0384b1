package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/clients/redis"
	"github.com/yungbote/neurobridge-tutor/internal/data/graph"
	"github.com/yungbote/neurobridge-tutor/internal/data/repos"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/platform/neo4jdb"
)

// CentralityProvider answers how central each topic is in the prerequisite
// graph. Failures are never fatal to a selection: the caller gets zero
// centrality (no boost) for whatever could not be resolved.
type CentralityProvider interface {
	Centrality(ctx context.Context, topics []*types.Topic) map[uuid.UUID]keystone.Centrality
	Invalidate(ctx context.Context, topicIDs []uuid.UUID)
}

type graphReader func(ctx context.Context, ids []uuid.UUID, maxHops int) (map[uuid.UUID]keystone.Centrality, error)

// subjectReader returns every topic of a subject, inactive ones included.
type subjectReader func(ctx context.Context, subject string) ([]*types.Topic, error)

type centralityProvider struct {
	log     *logger.Logger
	cache   *redis.Store
	read    graphReader
	subject subjectReader
	hops    int
	ttl     time.Duration
}

// NewCentralityProvider layers the redis cache over neo4j. Either may be nil;
// with no graph at all the stored catalog's parent links stand in for it.
func NewCentralityProvider(log *logger.Logger, cache *redis.Store, graphClient *neo4jdb.Client, topics repos.TopicRepo, policy Policy) CentralityProvider {
	p := &centralityProvider{
		log:   log.With("service", "CentralityProvider"),
		cache: cache,
		hops:  policy.DependentHops,
		ttl:   policy.CentralityTTL,
	}
	if topics != nil {
		p.subject = func(ctx context.Context, subject string) ([]*types.Topic, error) {
			return topics.GetBySubject(dbctx.Context{Ctx: ctx}, subject)
		}
	}
	if graphClient != nil && graphClient.Driver != nil {
		p.read = func(ctx context.Context, ids []uuid.UUID, maxHops int) (map[uuid.UUID]keystone.Centrality, error) {
			return graph.TopicCentrality(ctx, graphClient, ids, maxHops)
		}
	}
	return p
}

func (p *centralityProvider) Centrality(ctx context.Context, topics []*types.Topic) map[uuid.UUID]keystone.Centrality {
	ids := make([]uuid.UUID, 0, len(topics))
	for _, tp := range topics {
		if tp != nil {
			ids = append(ids, tp.ID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]keystone.Centrality{}
	}
	if p.read == nil {
		return p.fromCatalog(ctx, topics)
	}

	out, missing, err := p.cache.GetCentrality(ctx, ids)
	if err != nil {
		p.log.Warn("centrality cache read failed", "error", err)
		out, missing = map[uuid.UUID]keystone.Centrality{}, ids
	}
	if len(missing) == 0 {
		return out
	}

	fresh, err := p.read(ctx, missing, p.hops)
	if err != nil {
		p.log.Warn("centrality graph read failed, no boost applied", "topics", len(missing), "error", err)
		for _, id := range missing {
			out[id] = keystone.Centrality{}
		}
		return out
	}
	for id, c := range fresh {
		out[id] = c
	}
	if err := p.cache.SetCentrality(ctx, fresh, p.ttl); err != nil {
		p.log.Warn("centrality cache write failed", "error", err)
	}
	return out
}

func (p *centralityProvider) Invalidate(ctx context.Context, topicIDs []uuid.UUID) {
	if err := p.cache.InvalidateCentrality(ctx, topicIDs); err != nil {
		p.log.Warn("centrality cache invalidate failed", "error", err)
	}
}

// fromCatalog computes centrality over each requested topic's whole subject
// tree, so the result never depends on which topics the caller scoped to.
func (p *centralityProvider) fromCatalog(ctx context.Context, topics []*types.Topic) map[uuid.UUID]keystone.Centrality {
	if p.subject == nil {
		return catalogCentrality(topics)
	}
	out := make(map[uuid.UUID]keystone.Centrality, len(topics))
	trees := map[string]map[uuid.UUID]keystone.Centrality{}
	for _, tp := range topics {
		if tp == nil {
			continue
		}
		tree, ok := trees[tp.Subject]
		if !ok {
			all, err := p.subject(ctx, tp.Subject)
			if err != nil {
				p.log.Warn("catalog read failed, no boost applied", "subject", tp.Subject, "error", err)
				all = nil
			}
			tree = catalogCentrality(all)
			trees[tp.Subject] = tree
		}
		out[tp.ID] = tree[tp.ID]
	}
	return out
}

// catalogCentrality derives centrality from ParentID links alone: children
// are direct subtopics, dependents are all descendants.
func catalogCentrality(topics []*types.Topic) map[uuid.UUID]keystone.Centrality {
	children := map[uuid.UUID][]uuid.UUID{}
	for _, tp := range topics {
		if tp != nil && tp.ParentID != nil {
			children[*tp.ParentID] = append(children[*tp.ParentID], tp.ID)
		}
	}
	out := make(map[uuid.UUID]keystone.Centrality, len(topics))
	for _, tp := range topics {
		if tp == nil {
			continue
		}
		seen := map[uuid.UUID]bool{tp.ID: true}
		stack := append([]uuid.UUID(nil), children[tp.ID]...)
		dependents := 0
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			dependents++
			stack = append(stack, children[id]...)
		}
		out[tp.ID] = keystone.Centrality{DependentCount: dependents, ChildCount: len(children[tp.ID])}
	}
	return out
}
