package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type ScheduleRepository struct {
	c collection[[]model.CampaignSchedule]
}

func (r *ScheduleRepository) List(ctx context.Context) ([]model.CampaignSchedule, error) {
	return r.c.load(ctx)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*model.CampaignSchedule, error) {
	schedules, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		if schedules[i].ID == id {
			return &schedules[i], nil
		}
	}
	return nil, nil
}
