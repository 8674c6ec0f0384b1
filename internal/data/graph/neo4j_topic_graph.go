package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/keystone"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/platform/neo4jdb"
)

const (
	DefaultDependentHops = 3
	maxDependentHops     = 6
)

// Requirement says From cannot be learned before To.
type Requirement struct {
	FromID uuid.UUID
	ToID   uuid.UUID
}

// UpsertTopicGraph mirrors the topic catalog into neo4j: one :Topic node per
// topic, SUBTOPIC_OF from child to parent and REQUIRES between topics.
func UpsertTopicGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, topics []*types.Topic, reqs []Requirement) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodes := make([]map[string]any, 0, len(topics))
	parents := make([]map[string]any, 0, len(topics))
	for _, tp := range topics {
		if tp == nil || tp.ID == uuid.Nil {
			continue
		}
		nodes = append(nodes, map[string]any{
			"id":        tp.ID.String(),
			"subject":   tp.Subject,
			"key":       tp.Key,
			"name":      tp.Name,
			"active":    tp.Active,
			"max_level": int64(tp.MaxLevel),
			"synced_at": now,
		})
		if tp.ParentID != nil && *tp.ParentID != uuid.Nil {
			parents = append(parents, map[string]any{
				"child_id":  tp.ID.String(),
				"parent_id": tp.ParentID.String(),
			})
		}
	}

	requires := make([]map[string]any, 0, len(reqs))
	for _, r := range reqs {
		if r.FromID == uuid.Nil || r.ToID == uuid.Nil || r.FromID == r.ToID {
			continue
		}
		requires = append(requires, map[string]any{
			"from_id": r.FromID.String(),
			"to_id":   r.ToID.String(),
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Schema helpers are best-effort; restricted users may not be allowed.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (t:Topic) REQUIRE t.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (t:Topic {id: n.id})
SET t += n
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(nodes) > 0 {
			// Parent links are rewritten wholesale for the synced topics.
			ids := make([]string, 0, len(nodes))
			for _, n := range nodes {
				ids = append(ids, n["id"].(string))
			}
			res, err := tx.Run(ctx, `
MATCH (c:Topic)-[e:SUBTOPIC_OF]->(:Topic)
WHERE c.id IN $ids
DELETE e
`, map[string]any{"ids": ids})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(parents) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (c:Topic {id: r.child_id})
MATCH (p:Topic {id: r.parent_id})
MERGE (c)-[e:SUBTOPIC_OF]->(p)
SET e.synced_at = $now
`, map[string]any{"rels": parents, "now": now})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(requires) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Topic {id: r.from_id})
MATCH (b:Topic {id: r.to_id})
MERGE (a)-[e:REQUIRES]->(b)
SET e.synced_at = $now
`, map[string]any{"rels": requires, "now": now})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j topic graph sync: %w", err)
	}
	return nil
}

// TopicCentrality reads dependent and child counts for each topic. Dependents
// are the distinct topics that reach it through SUBTOPIC_OF or REQUIRES within
// maxHops; children are its direct subtopics. Topics missing from the graph
// come back as zero centrality.
func TopicCentrality(ctx context.Context, client *neo4jdb.Client, topicIDs []uuid.UUID, maxHops int) (map[uuid.UUID]keystone.Centrality, error) {
	out := make(map[uuid.UUID]keystone.Centrality, len(topicIDs))
	if client == nil || client.Driver == nil || len(topicIDs) == 0 {
		return out, nil
	}
	if maxHops <= 0 {
		maxHops = DefaultDependentHops
	}
	if maxHops > maxDependentHops {
		maxHops = maxDependentHops
	}

	ids := make([]string, 0, len(topicIDs))
	for _, id := range topicIDs {
		ids = append(ids, id.String())
		out[id] = keystone.Centrality{}
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Variable-length bounds cannot be parameters, hence the Sprintf.
	query := fmt.Sprintf(`
UNWIND $ids AS id
MATCH (t:Topic {id: id})
OPTIONAL MATCH (d:Topic)-[:SUBTOPIC_OF|REQUIRES*1..%d]->(t)
WHERE d.id <> t.id
WITH t, count(DISTINCT d) AS dependents
OPTIONAL MATCH (c:Topic)-[:SUBTOPIC_OF]->(t)
RETURN t.id AS id, dependents, count(DISTINCT c) AS children
`, maxHops)

	recs, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j topic centrality: %w", err)
	}

	for _, rec := range recs.([]*neo4j.Record) {
		rawID, _ := rec.Get("id")
		idStr, _ := rawID.(string)
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		dependents, _ := rec.Get("dependents")
		children, _ := rec.Get("children")
		out[id] = keystone.Centrality{
			DependentCount: int(asInt64(dependents)),
			ChildCount:     int(asInt64(children)),
		}
	}
	return out, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
