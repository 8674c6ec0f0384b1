package tutor

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-tutor/internal/domain"
	"github.com/yungbote/neurobridge-tutor/internal/platform/dbctx"
)

func TestTopicRepoUpsertKeepsIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTopicRepo(db, testutil.Logger(t))

	subject := "subj-" + uuid.NewString()
	first := []*types.Topic{
		{Subject: subject, Key: "algebra", Name: "Algebra", Active: true},
		{Subject: subject, Key: "geometry", Name: "Geometry", Active: true},
	}
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	algebraID := first[0].ID

	second := []*types.Topic{
		{Subject: subject, Key: "algebra", Name: "Algebra I", Active: true},
		{Subject: subject, Key: "geometry", Name: "Geometry", Active: false},
	}
	if err := repo.Upsert(dbc, second); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if second[0].ID != algebraID {
		t.Fatalf("upsert should resolve the stored id: got %s want %s", second[0].ID, algebraID)
	}

	all, err := repo.GetBySubject(dbc, subject)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetBySubject: err=%v len=%d", err, len(all))
	}
	active, err := repo.ListActive(dbc, []uuid.UUID{first[0].ID, first[1].ID})
	if err != nil || len(active) != 1 || active[0].Name != "Algebra I" {
		t.Fatalf("ListActive: %+v err=%v", active, err)
	}
}
