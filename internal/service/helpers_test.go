package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) service.Clock {
	return func() time.Time { return t }
}

// sequentialIDs returns prefix-1, prefix-2, ...
func sequentialIDs(prefix string) service.IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newRepos(t *testing.T, store db.Store) *repository.Repositories {
	t.Helper()
	if store == nil {
		store = db.NewMemoryStore()
	}
	return repository.New(store, logger.NewNop())
}

func seedMembers(t *testing.T, repos *repository.Repositories, members ...model.Member) {
	t.Helper()
	if err := repos.Members.ReplaceAll(context.Background(), members); err != nil {
		t.Fatalf("seed members: %v", err)
	}
}

func seedTemplates(t *testing.T, repos *repository.Repositories, templates ...model.CampaignTemplate) {
	t.Helper()
	uow := repos.Begin(context.Background())
	uow.PutTemplates(templates)
	if err := uow.Commit(); err != nil {
		t.Fatalf("seed templates: %v", err)
	}
}

func seedSchedules(t *testing.T, repos *repository.Repositories, schedules ...model.CampaignSchedule) {
	t.Helper()
	uow := repos.Begin(context.Background())
	uow.PutSchedules(schedules)
	if err := uow.Commit(); err != nil {
		t.Fatalf("seed schedules: %v", err)
	}
}

func seedTasks(t *testing.T, repos *repository.Repositories, tasks map[string][]model.FollowUpTask) {
	t.Helper()
	uow := repos.Begin(context.Background())
	uow.PutTasks(tasks)
	if err := uow.Commit(); err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
}

// rejectingStore reads from the wrapped store and refuses batch writes.
type rejectingStore struct {
	*db.MemoryStore
}

func (s *rejectingStore) SetMany(context.Context, []db.Entry) error {
	return errors.New("write rejected")
}

// MockQueue records published events.
type MockQueue struct {
	mu        sync.Mutex
	published []publishedEvent
	fail      bool
}

type publishedEvent struct {
	Topic   string
	Payload any
}

func (q *MockQueue) Publish(topic string, payload any) error {
	if q.fail {
		return errors.New("broker down")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (q *MockQueue) Subscribe(string, func(any) error) error { return nil }

func (q *MockQueue) events() []publishedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]publishedEvent(nil), q.published...)
}

func intPtr(v int) *int { return &v }
