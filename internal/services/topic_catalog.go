package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-tutor/internal/data/graph"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/learning/cognitive"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/platform/neo4jdb"
)

// CatalogFile is the YAML shape of a topic tree:
//
//	subject: algebra
//	topics:
//	  - key: equations
//	    name: Equations
//	    children:
//	      - key: linear
//	        requires: [fractions]
type CatalogFile struct {
	Subject string         `yaml:"subject"`
	Topics  []CatalogTopic `yaml:"topics"`
}

type CatalogTopic struct {
	Key      string         `yaml:"key"`
	Name     string         `yaml:"name"`
	MaxLevel int            `yaml:"max_level"`
	Active   *bool          `yaml:"active"`
	Requires []string       `yaml:"requires"`
	Metadata map[string]any `yaml:"metadata"`
	Children []CatalogTopic `yaml:"children"`
}

type CatalogSyncResult struct {
	Subject      string `json:"subject"`
	Topics       int    `json:"topics"`
	Requirements int    `json:"requirements"`
	GraphSynced  bool   `json:"graph_synced"`
}

type TopicCatalogService interface {
	Sync(ctx context.Context, raw []byte) (*CatalogSyncResult, error)
}

type topicCatalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	repos      TutorRepos
	graph      *neo4jdb.Client
	centrality CentralityProvider
}

func NewTopicCatalogService(db *gorm.DB, log *logger.Logger, r TutorRepos, graphClient *neo4jdb.Client, centrality CentralityProvider) TopicCatalogService {
	return &topicCatalogService{
		db:         db,
		log:        log.With("service", "TopicCatalogService"),
		repos:      r,
		graph:      graphClient,
		centrality: centrality,
	}
}

type flatTopic struct {
	row       *types.Topic
	parentKey string
	requires  []string
}

// parseCatalog validates a YAML topic tree and flattens it parent-first.
func parseCatalog(raw []byte) (*CatalogFile, []flatTopic, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, invalidField("catalog", err.Error())
	}
	f.Subject = strings.TrimSpace(f.Subject)
	if f.Subject == "" {
		return nil, nil, invalidField("subject", "is required")
	}
	var (
		out  []flatTopic
		seen = map[string]bool{}
		walk func(items []CatalogTopic, parent string) error
	)
	walk = func(items []CatalogTopic, parent string) error {
		for _, it := range items {
			key := strings.TrimSpace(it.Key)
			if key == "" {
				return invalidField("key", "is required")
			}
			if seen[key] {
				return invalidField("key", fmt.Sprintf("%q is duplicated", key))
			}
			seen[key] = true
			maxLevel := it.MaxLevel
			if maxLevel == 0 {
				maxLevel = int(cognitive.MaxLevel)
			}
			if !cognitive.Level(maxLevel).Valid() {
				return invalidField("max_level", fmt.Sprintf("%d out of range on %q", maxLevel, key))
			}
			name := strings.TrimSpace(it.Name)
			if name == "" {
				name = key
			}
			active := true
			if it.Active != nil {
				active = *it.Active
			}
			var meta datatypes.JSON
			if len(it.Metadata) > 0 {
				b, err := json.Marshal(it.Metadata)
				if err != nil {
					return invalidField("metadata", err.Error())
				}
				meta = datatypes.JSON(b)
			}
			out = append(out, flatTopic{
				row: &types.Topic{
					Subject:  f.Subject,
					Key:      key,
					Name:     name,
					MaxLevel: maxLevel,
					Active:   active,
					Metadata: meta,
				},
				parentKey: parent,
				requires:  it.Requires,
			})
			if err := walk(it.Children, key); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(f.Topics, ""); err != nil {
		return nil, nil, err
	}
	for _, ft := range out {
		for _, req := range ft.requires {
			if !seen[strings.TrimSpace(req)] {
				return nil, nil, invalidField("requires", fmt.Sprintf("%q on %q is not in the catalog", req, ft.row.Key))
			}
		}
	}
	return &f, out, nil
}

// Sync upserts the catalog into postgres, mirrors the hierarchy into neo4j
// and drops cached centrality for every synced topic.
func (s *topicCatalogService) Sync(ctx context.Context, raw []byte) (*CatalogSyncResult, error) {
	f, flat, err := parseCatalog(raw)
	if err != nil {
		return nil, err
	}
	rows := make([]*types.Topic, len(flat))
	for i, ft := range flat {
		rows[i] = ft.row
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		// First pass resolves stored IDs, second pass writes parent links.
		if err := s.repos.Topics.Upsert(dbc, rows); err != nil {
			return fmt.Errorf("upsert topics: %w", err)
		}
		byKey := make(map[string]uuid.UUID, len(rows))
		for _, r := range rows {
			byKey[r.Key] = r.ID
		}
		for _, ft := range flat {
			if ft.parentKey == "" {
				ft.row.ParentID = nil
				continue
			}
			pid := byKey[ft.parentKey]
			ft.row.ParentID = &pid
		}
		if err := s.repos.Topics.Upsert(dbc, rows); err != nil {
			return fmt.Errorf("link topic parents: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]uuid.UUID, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r.ID
		ids = append(ids, r.ID)
	}
	var reqs []graph.Requirement
	for _, ft := range flat {
		for _, req := range ft.requires {
			reqs = append(reqs, graph.Requirement{FromID: ft.row.ID, ToID: byKey[strings.TrimSpace(req)]})
		}
	}

	res := &CatalogSyncResult{Subject: f.Subject, Topics: len(rows), Requirements: len(reqs)}
	if s.graph != nil && s.graph.Driver != nil {
		if err := graph.UpsertTopicGraph(ctx, s.graph, s.log, rows, reqs); err != nil {
			return nil, err
		}
		res.GraphSynced = true
	}
	if s.centrality != nil {
		s.centrality.Invalidate(ctx, ids)
	}
	s.log.Info("topic catalog synced", "subject", f.Subject, "topics", res.Topics, "requirements", res.Requirements, "graph", res.GraphSynced)
	return res, nil
}
