package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type AttendanceRepository struct {
	c collection[map[string][]model.AttendanceEvent]
}

func (r *AttendanceRepository) ListByMember(ctx context.Context, memberID string) ([]model.AttendanceEvent, error) {
	events, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(events[memberID]), nil
}

func (r *AttendanceRepository) ListAll(ctx context.Context) (map[string][]model.AttendanceEvent, error) {
	return r.c.load(ctx)
}
