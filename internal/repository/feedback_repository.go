package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type FeedbackRepository struct {
	c collection[map[string][]model.FeedbackRecord]
}

func (r *FeedbackRepository) ListByMember(ctx context.Context, memberID string) ([]model.FeedbackRecord, error) {
	records, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(records[memberID]), nil
}
