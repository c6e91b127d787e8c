package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type RunRepository struct {
	c collection[[]model.CampaignRun]
}

// List returns runs in execution order, oldest first.
func (r *RunRepository) List(ctx context.Context) ([]model.CampaignRun, error) {
	return r.c.load(ctx)
}
