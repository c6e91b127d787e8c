package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type TaskRepository struct {
	c collection[map[string][]model.FollowUpTask]
}

func (r *TaskRepository) ListByMember(ctx context.Context, memberID string) ([]model.FollowUpTask, error) {
	tasks, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(tasks[memberID]), nil
}

// ListAll returns every member's tasks keyed by member id.
func (r *TaskRepository) ListAll(ctx context.Context) (map[string][]model.FollowUpTask, error) {
	return r.c.load(ctx)
}

type InteractionRepository struct {
	c collection[map[string][]model.InteractionLogEntry]
}

func (r *InteractionRepository) ListByMember(ctx context.Context, memberID string) ([]model.InteractionLogEntry, error) {
	entries, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(entries[memberID]), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
