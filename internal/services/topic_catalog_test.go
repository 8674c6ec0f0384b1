package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
)

func catalogYAML(subject string) []byte {
	return []byte(fmt.Sprintf(`
subject: %s
topics:
  - key: numbers
    name: Numbers
    children:
      - key: fractions
        name: Fractions
      - key: decimals
        requires: [fractions]
        max_level: 4
      - key: percentages
        active: false
        metadata:
          exam_weight: 0.2
`, subject))
}

func TestTopicCatalogSync(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := NewTutorRepos(db, log)
	svc := NewTopicCatalogService(db, log, r, nil, nil)
	ctx := context.Background()
	subject := "arith-" + uuid.NewString()

	res, err := svc.Sync(ctx, catalogYAML(subject))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Topics != 4 || res.Requirements != 1 || res.GraphSynced {
		t.Fatalf("unexpected result %+v", res)
	}

	topics, err := r.Topics.GetBySubject(dbctx.Context{Ctx: ctx}, subject)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	byKey := map[string]*types.Topic{}
	for _, tp := range topics {
		byKey[tp.Key] = tp
	}
	root := byKey["numbers"]
	if root == nil || root.ParentID != nil {
		t.Fatalf("root topic: %+v", root)
	}
	for _, k := range []string{"fractions", "decimals", "percentages"} {
		tp := byKey[k]
		if tp == nil || tp.ParentID == nil || *tp.ParentID != root.ID {
			t.Fatalf("%s not linked to root: %+v", k, tp)
		}
	}
	if byKey["decimals"].MaxLevel != 4 || byKey["fractions"].MaxLevel != 6 {
		t.Fatalf("max levels: %d %d", byKey["decimals"].MaxLevel, byKey["fractions"].MaxLevel)
	}
	if byKey["percentages"].Active || !byKey["fractions"].Active {
		t.Fatalf("active flags not honored")
	}
	if byKey["fractions"].Name != "Fractions" || byKey["decimals"].Name != "decimals" {
		t.Fatalf("names: %q %q", byKey["fractions"].Name, byKey["decimals"].Name)
	}

	// Re-syncing keeps stored IDs.
	if _, err := svc.Sync(ctx, catalogYAML(subject)); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	again, err := r.Topics.GetBySubject(dbctx.Context{Ctx: ctx}, subject)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if len(again) != 4 {
		t.Fatalf("re-sync duplicated topics: %d", len(again))
	}
	for _, tp := range again {
		if tp.ID != byKey[tp.Key].ID {
			t.Fatalf("%s changed id on re-sync", tp.Key)
		}
	}
}

func TestTopicCatalogRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"no subject": "topics:\n  - key: a\n",
		"no key":     "subject: s\ntopics:\n  - name: a\n",
		"duplicate":  "subject: s\ntopics:\n  - key: a\n  - key: a\n",
		"bad level":  "subject: s\ntopics:\n  - key: a\n    max_level: 9\n",
		"dangling":   "subject: s\ntopics:\n  - key: a\n    requires: [b]\n",
		"not yaml":   "subject: [\n",
	}
	for name, raw := range cases {
		if _, _, err := parseCatalog([]byte(raw)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: want ErrInvalidInput, got %v", name, err)
		}
	}
}
