package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type MessageLogRepository struct {
	c collection[map[string][]model.MessageLogEntry]
}

func (r *MessageLogRepository) ListByMember(ctx context.Context, memberID string) ([]model.MessageLogEntry, error) {
	logs, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(logs[memberID]), nil
}
