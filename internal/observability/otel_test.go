package observability

import (
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestLoadTraceSettingsDefaults(t *testing.T) {
	for _, k := range []string{"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS", "OTEL_TRACES_SAMPLER", "OTEL_TRACES_SAMPLER_ARG"} {
		t.Setenv(k, "")
	}
	s := LoadTraceSettings()
	if s.Enabled || s.Endpoint != "" || s.Headers != nil {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if got := s.NewSampler().Description(); !strings.HasPrefix(got, "ParentBased{root:TraceIDRatioBased{0.1}") {
		t.Fatalf("default sampler: %s", got)
	}
}

func TestTraceSamplerFromEnv(t *testing.T) {
	cases := []struct {
		sampler string
		arg     string
		prefix  string
	}{
		{"always_on", "", "AlwaysOnSampler"},
		{"always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "0.25", "TraceIDRatioBased{0.25}"},
		{"traceidratio", "7", "AlwaysOnSampler"},
		{"parentbased_always_on", "", "ParentBased{root:AlwaysOnSampler"},
		{"bogus", "0.5", "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tc := range cases {
		t.Setenv("OTEL_TRACES_SAMPLER", tc.sampler)
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", tc.arg)
		if got := LoadTraceSettings().NewSampler().Description(); !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("%s/%s: got %s want prefix %s", tc.sampler, tc.arg, got, tc.prefix)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc ,broken, =x,team=tutor")
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "tutor" {
		t.Fatalf("headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty header string should parse to nil")
	}
}

func TestResourceAttributesCarryTutorSettings(t *testing.T) {
	attrs := resourceAttributes(OtelConfig{
		Environment: "staging",
		Attributes:  []attribute.KeyValue{attribute.Int("tutor.dependent_hops", 3)},
	})
	got := map[attribute.Key]attribute.Value{}
	for _, kv := range attrs {
		got[kv.Key] = kv.Value
	}
	if got["service.name"].AsString() != "neurobridge-tutor" {
		t.Fatalf("service.name: %v", got["service.name"])
	}
	if got["service.namespace"].AsString() != serviceNamespace {
		t.Fatalf("service.namespace: %v", got["service.namespace"])
	}
	if got["deployment.environment.name"].AsString() != "staging" {
		t.Fatalf("environment: %v", got["deployment.environment.name"])
	}
	if got["tutor.dependent_hops"].AsInt64() != 3 {
		t.Fatalf("tutor attribute missing: %v", attrs)
	}
	if _, ok := got["service.version"]; ok {
		t.Fatalf("empty version should be omitted")
	}
}
