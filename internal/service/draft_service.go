package service

import (
	"context"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/drafting"
	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

// DraftService produces message drafts. It never writes state; saving a
// draft is a separate call.
type DraftService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	// Drafter is nil when no API key is configured.
	Drafter drafting.Drafter
	Timeout time.Duration
	Log     *logger.Logger
}

type DraftResult struct {
	Text      string `json:"text"`
	Fallback  bool   `json:"fallback"`
	Retryable bool   `json:"retryable"`
}

func (s *DraftService) DraftCampaign(ctx context.Context, templateID string) (*DraftResult, error) {
	t, err := s.Repos.Templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, appErrors.NewTemplateNotFound(templateID)
	}
	return s.generate(ctx, "campaign", drafting.CampaignPrompt(t.Segment, t.Instruction), drafting.CampaignFailureMessage), nil
}

func (s *DraftService) DraftMotivation(ctx context.Context, memberID string) (*DraftResult, error) {
	m, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, "motivation", drafting.MotivationPrompt(*m), drafting.MotivationFailureMessage), nil
}

func (s *DraftService) DraftInsight(ctx context.Context, memberID string) (*DraftResult, error) {
	m, err := s.member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, "insight", drafting.InsightPrompt(*m), drafting.InsightFailureMessage), nil
}

func (s *DraftService) member(ctx context.Context, id string) (*model.Member, error) {
	m, err := s.Members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, appErrors.NewMemberNotFound(id)
	}
	return m, nil
}

func (s *DraftService) generate(ctx context.Context, kind, prompt, failure string) *DraftResult {
	if s.Drafter == nil {
		return &DraftResult{Text: drafting.DisabledMessage, Fallback: true}
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	text, err := s.Drafter.Generate(ctx, prompt)
	if err != nil {
		s.Log.Warn("draft generation failed", "kind", kind, "error", appErrors.NewExternalService("gemini", err))
		return &DraftResult{Text: failure, Fallback: true, Retryable: true}
	}
	return &DraftResult{Text: text}
}
