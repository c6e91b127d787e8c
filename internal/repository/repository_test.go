package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

// failingStore accepts reads and rejects every write.
type failingStore struct {
	*db.MemoryStore
}

func (f *failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (f *failingStore) SetMany(context.Context, []db.Entry) error  { return errors.New("disk full") }

func TestMalformedCollectionLoadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not json":       `{{{`,
		"future version": `{"version":99,"items":[]}`,
		"wrong shape":    `{"version":1,"items":{"a":1}}`,
		"bare array":     `[{"id":"t1"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := db.NewMemoryStore()
			_ = store.Set(ctx, repository.KeyTemplates, []byte(raw))
			repos := repository.New(store, logger.NewNop())

			templates, err := repos.Templates.List(ctx)
			if err != nil {
				t.Fatalf("expected recovery, got error %v", err)
			}
			if templates == nil || len(templates) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", templates)
			}
		})
	}
}

func TestNullItemsLoadAsEmptyMap(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	_ = store.Set(ctx, repository.KeyTasks, []byte(`{"version":1,"items":null}`))
	repos := repository.New(store, logger.NewNop())

	all, err := repos.Tasks.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all == nil {
		t.Fatal("expected non-nil map")
	}
	tasks, _ := repos.Tasks.ListByMember(ctx, "m1")
	if tasks == nil {
		t.Fatal("expected non-nil slice")
	}
}

func TestUnitOfWorkCommitsAllCollections(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	repos := repository.New(store, logger.NewNop())
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	uow := repos.Begin(ctx)
	runs, _ := uow.Runs()
	uow.PutRuns(append(runs, model.CampaignRun{ID: "r1", TemplateID: "t1", ExecutedAt: now, MemberIDs: []string{"m1"}}))
	tasks, _ := uow.Tasks()
	tasks["m1"] = append(tasks["m1"], model.FollowUpTask{ID: "k1", Title: "call", CreatedAt: now})
	uow.PutTasks(tasks)

	keys := uow.DirtyKeys()
	if len(keys) != 2 || keys[0] != repository.KeyRuns || keys[1] != repository.KeyTasks {
		t.Fatalf("unexpected write order %v", keys)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := uow.Commit(); !errors.Is(err, repository.ErrCommitted) {
		t.Fatalf("expected ErrCommitted, got %v", err)
	}

	storedRuns, _ := repos.Runs.List(ctx)
	if len(storedRuns) != 1 || storedRuns[0].ID != "r1" {
		t.Fatalf("unexpected runs %#v", storedRuns)
	}
	storedTasks, _ := repos.Tasks.ListByMember(ctx, "m1")
	if len(storedTasks) != 1 || storedTasks[0].Title != "call" {
		t.Fatalf("unexpected tasks %#v", storedTasks)
	}
}

func TestUnitOfWorkFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: db.NewMemoryStore()}
	repos := repository.New(store, logger.NewNop())

	uow := repos.Begin(ctx)
	uow.PutRuns([]model.CampaignRun{{ID: "r1"}})
	if err := uow.Commit(); err == nil {
		t.Fatal("expected commit error")
	}
	runs, _ := repos.Runs.List(ctx)
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

func TestMemberLookup(t *testing.T) {
	ctx := context.Background()
	repos := repository.New(db.NewMemoryStore(), logger.NewNop())
	_ = repos.Members.ReplaceAll(ctx, []model.Member{{ID: "m1", Name: "Ana"}})

	m, err := repos.Members.GetByID(ctx, "m1")
	if err != nil || m == nil || m.Name != "Ana" {
		t.Fatalf("expected Ana, got %#v err=%v", m, err)
	}
	missing, err := repos.Members.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil member, got %#v err=%v", missing, err)
	}
}

func TestDiscardEndsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	repos := repository.New(db.NewMemoryStore(), logger.NewNop())

	uow := repos.Begin(ctx)
	uow.PutRuns([]model.CampaignRun{{ID: "r1"}})
	uow.Discard()
	uow.Discard()
	if err := uow.Commit(); !errors.Is(err, repository.ErrCommitted) {
		t.Fatalf("expected ErrCommitted after discard, got %v", err)
	}

	// The next unit of work must not block on the discarded one.
	done := make(chan struct{})
	go func() {
		defer close(done)
		next := repos.Begin(ctx)
		next.Discard()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Begin blocked after Discard")
	}

	if runs, _ := repos.Runs.List(ctx); len(runs) != 0 {
		t.Fatalf("discarded runs were written: %d", len(runs))
	}
}

func TestDoCommitsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	repos := repository.New(db.NewMemoryStore(), logger.NewNop())

	err := repos.Do(ctx, func(uow *repository.UnitOfWork) error {
		uow.PutRuns([]model.CampaignRun{{ID: "r1"}})
		return errors.New("validation failed")
	})
	if err == nil {
		t.Fatal("expected fn error")
	}
	if runs, _ := repos.Runs.List(ctx); len(runs) != 0 {
		t.Fatalf("expected nothing written, got %d runs", len(runs))
	}

	err = repos.Do(ctx, func(uow *repository.UnitOfWork) error {
		uow.PutRuns([]model.CampaignRun{{ID: "r2"}})
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if runs, _ := repos.Runs.List(ctx); len(runs) != 1 || runs[0].ID != "r2" {
		t.Fatalf("unexpected runs %#v", runs)
	}
}
