package app

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-tutor/internal/clients/redis"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/platform/neo4jdb"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx"
)

// Clients are the optional backends. Each is nil when its address is unset.
type Clients struct {
	Redis    *redis.Store
	Graph    *neo4jdb.Client
	Temporal temporalsdkclient.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	rs, err := redis.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rs == nil {
		log.Warn("REDIS_ADDR not set; centrality cache and learner lock disabled")
	}

	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		_ = rs.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if graphClient == nil {
		log.Warn("NEO4J_URI not set; centrality falls back to the topic tree")
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		_ = rs.Close()
		_ = graphClient.Close(context.Background())
		return Clients{}, fmt.Errorf("init temporal: %w", err)
	}

	return Clients{Redis: rs, Graph: graphClient, Temporal: tc}, nil
}

func (c Clients) close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	_ = c.Redis.Close()
	_ = c.Graph.Close(context.Background())
}
