package service

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

// MissingTemplateLabel is shown wherever a template id no longer resolves.
const MissingTemplateLabel = "template missing"

type TemplateService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	Log     *logger.Logger
	Now     Clock
	NewID   IDGenerator
}

func (s *TemplateService) Create(ctx context.Context, name string, segment model.Segment, instruction string) (*model.CampaignTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "template name is required")
	}
	if !segment.Valid() {
		return nil, appErrors.NewValidation("segment", "unknown segment "+string(segment))
	}

	t := model.CampaignTemplate{
		ID:          s.NewID.next(),
		Name:        name,
		Segment:     segment,
		Instruction: strings.TrimSpace(instruction),
		CreatedAt:   s.Now.now(),
	}

	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	templates, err := uow.Templates()
	if err != nil {
		return nil, err
	}
	uow.PutTemplates(append(templates, t))
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Replace swaps name, segment and instruction of an existing template.
// Identity, createdAt and lastUsedAt are kept.
func (s *TemplateService) Replace(ctx context.Context, id, name string, segment model.Segment, instruction string) (*model.CampaignTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "template name is required")
	}
	if !segment.Valid() {
		return nil, appErrors.NewValidation("segment", "unknown segment "+string(segment))
	}

	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	templates, err := uow.Templates()
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID != id {
			continue
		}
		templates[i].Name = name
		templates[i].Segment = segment
		templates[i].Instruction = strings.TrimSpace(instruction)
		updated := templates[i]
		uow.PutTemplates(templates)
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, appErrors.NewTemplateNotFound(id)
}

func (s *TemplateService) List(ctx context.Context) ([]model.CampaignTemplate, error) {
	return s.Repos.Templates.List(ctx)
}

// FindByID returns nil without error when the template does not exist.
func (s *TemplateService) FindByID(ctx context.Context, id string) (*model.CampaignTemplate, error) {
	return s.Repos.Templates.GetByID(ctx, id)
}

func (s *TemplateService) MarkUsed(ctx context.Context, id string, at time.Time) error {
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	ok, err := markTemplateUsed(uow, id, at)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NewTemplateNotFound(id)
	}
	return uow.Commit()
}

func markTemplateUsed(uow *repository.UnitOfWork, id string, at time.Time) (bool, error) {
	templates, err := uow.Templates()
	if err != nil {
		return false, err
	}
	for i := range templates {
		if templates[i].ID == id {
			used := at
			templates[i].LastUsedAt = &used
			uow.PutTemplates(templates)
			return true, nil
		}
	}
	return false, nil
}

// Preview renders message for one member, replacing {name}, {discipline}
// and {belt}.
func (s *TemplateService) Preview(ctx context.Context, templateID, memberID, message string) (string, error) {
	t, err := s.FindByID(ctx, templateID)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", appErrors.NewTemplateNotFound(templateID)
	}
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", appErrors.NewMemberNotFound(memberID)
	}
	if strings.TrimSpace(message) == "" {
		return "", appErrors.NewValidation("message", "message cannot be empty")
	}
	return RenderTemplate(message, map[string]string{
		"name":       member.Name,
		"discipline": member.Discipline,
		"belt":       string(member.Belt),
	}), nil
}

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "<unknown>"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// templateLabel returns the template's name, or MissingTemplateLabel.
func templateLabel(templates []model.CampaignTemplate, id string) string {
	for _, t := range templates {
		if t.ID == id {
			return t.Name
		}
	}
	return MissingTemplateLabel
}
