package service

import (
	"context"
	"math"
	"strings"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

type FeedbackService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	Log     *logger.Logger
	Now     Clock
	NewID   IDGenerator
}

type FeedbackInput struct {
	Rating     int
	Comment    string
	ClassName  string
	Instructor string
}

func (s *FeedbackService) Submit(ctx context.Context, memberID string, in FeedbackInput) (*model.FeedbackRecord, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, appErrors.NewValidation("rating", "rating must be between 1 and 5")
	}
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, appErrors.NewMemberNotFound(memberID)
	}

	record := model.FeedbackRecord{
		ID:          s.NewID.next(),
		MemberID:    memberID,
		Rating:      in.Rating,
		Comment:     strings.TrimSpace(in.Comment),
		ClassName:   strings.TrimSpace(in.ClassName),
		Instructor:  strings.TrimSpace(in.Instructor),
		SubmittedAt: s.Now.now(),
	}
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	all, err := uow.Feedback()
	if err != nil {
		return nil, err
	}
	all[memberID] = append(all[memberID], record)
	uow.PutFeedback(all)
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns a member's feedback, newest first.
func (s *FeedbackService) List(ctx context.Context, memberID string) ([]model.FeedbackRecord, error) {
	records, err := s.Repos.Feedback.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]model.FeedbackRecord, len(records))
	for i := range records {
		out[len(records)-1-i] = records[i]
	}
	return out, nil
}

func (s *FeedbackService) Stats(ctx context.Context, memberID string) (model.FeedbackStats, error) {
	records, err := s.Repos.Feedback.ListByMember(ctx, memberID)
	if err != nil {
		return model.FeedbackStats{}, err
	}
	return ComputeFeedbackStats(records), nil
}

// ComputeFeedbackStats averages ratings to one decimal and picks the most
// recent non-empty comment.
func ComputeFeedbackStats(records []model.FeedbackRecord) model.FeedbackStats {
	stats := model.FeedbackStats{Count: len(records)}
	if len(records) == 0 {
		return stats
	}
	sum := 0
	var latest *model.FeedbackRecord
	for i := range records {
		r := &records[i]
		sum += r.Rating
		if r.Comment != "" && (latest == nil || !r.SubmittedAt.Before(latest.SubmittedAt)) {
			latest = r
		}
	}
	stats.Average = math.Round(float64(sum)/float64(len(records))*10) / 10
	if latest != nil {
		stats.LastComment = latest.Comment
	}
	return stats
}
