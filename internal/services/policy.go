package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-tutor/internal/data/graph"
	"github.com/yungbote/neurobridge-tutor/internal/learning/bandit"
	"github.com/yungbote/neurobridge-tutor/internal/platform/envutil"
)

// Policy holds the engine tunables that are not fixed by the learning model
// itself. Unlock thresholds and the cycle layout are deliberately absent.
type Policy struct {
	Recency       bandit.RecencyPenalty `yaml:"recency"`
	Dimensions    []string              `yaml:"dimensions"`
	DependentHops int                   `yaml:"dependent_hops"`
	CentralityTTL time.Duration         `yaml:"centrality_ttl"`
	LockTTL       time.Duration         `yaml:"lock_ttl"`
	TraceSamples  bool                  `yaml:"trace_samples"`
}

func DefaultPolicy() Policy {
	return Policy{
		Recency:       bandit.DefaultRecencyPenalty(),
		Dimensions:    []string{"conceptual", "procedural", "application", "analysis"},
		DependentHops: graph.DefaultDependentHops,
		CentralityTTL: 15 * time.Minute,
		LockTTL:       5 * time.Second,
		TraceSamples:  true,
	}
}

// LoadPolicy reads a YAML policy file on top of the defaults. Keys missing
// from the file keep their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	path = strings.TrimSpace(path)
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	return p.normalized(), nil
}

// PolicyFromEnv loads TUTOR_POLICY_FILE (if set) and then applies the
// TUTOR_RECENCY_* overrides.
func PolicyFromEnv() (Policy, error) {
	p, err := LoadPolicy(os.Getenv("TUTOR_POLICY_FILE"))
	if err != nil {
		return p, err
	}
	p.Recency.Max = envutil.Float("TUTOR_RECENCY_MAX", p.Recency.Max)
	p.Recency.HalfLife = envutil.Duration("TUTOR_RECENCY_HALF_LIFE", p.Recency.HalfLife)
	p.LockTTL = envutil.Duration("TUTOR_LOCK_TTL", p.LockTTL)
	return p.normalized(), nil
}

// TraceAttributes describes the policy on the trace resource.
func (p Policy) TraceAttributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.StringSlice("tutor.dimensions", p.Dimensions),
		attribute.Int("tutor.dependent_hops", p.DependentHops),
		attribute.Float64("tutor.recency.max", p.Recency.Max),
		attribute.String("tutor.recency.half_life", p.Recency.HalfLife.String()),
		attribute.Bool("tutor.trace_samples", p.TraceSamples),
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.Recency.Max < 0 {
		p.Recency.Max = 0
	}
	dims := make([]string, 0, len(p.Dimensions))
	seen := map[string]bool{}
	for _, d := range p.Dimensions {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		dims = append(dims, d)
	}
	if len(dims) == 0 {
		dims = def.Dimensions
	}
	p.Dimensions = dims
	if p.DependentHops <= 0 {
		p.DependentHops = def.DependentHops
	}
	if p.CentralityTTL <= 0 {
		p.CentralityTTL = def.CentralityTTL
	}
	if p.LockTTL <= 0 {
		p.LockTTL = def.LockTTL
	}
	return p
}
