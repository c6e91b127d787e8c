package repository

import (
	"context"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

type TemplateRepository struct {
	c collection[[]model.CampaignTemplate]
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.CampaignTemplate, error) {
	return r.c.load(ctx)
}

// GetByID returns nil when the template does not exist.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*model.CampaignTemplate, error) {
	templates, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	return findTemplate(templates, id), nil
}

func findTemplate(templates []model.CampaignTemplate, id string) *model.CampaignTemplate {
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i]
		}
	}
	return nil
}
