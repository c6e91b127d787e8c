package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

const upcomingWindow = 7 * 24 * time.Hour

type ScheduleService struct {
	Repos *repository.Repositories
	Log   *logger.Logger
	Now   Clock
	NewID IDGenerator
}

// ScheduleView is a schedule enriched for display.
type ScheduleView struct {
	model.CampaignSchedule
	TemplateName string `json:"template_name"`
	Overdue      bool   `json:"overdue"`
}

type CampaignSummary struct {
	ActiveCount int            `json:"active_count"`
	Overdue     []ScheduleView `json:"overdue"`
	Upcoming    []ScheduleView `json:"upcoming"`
	Next        *ScheduleView  `json:"next"`
}

// Step moves t forward by one period. Monthly steps keep the day of month
// and clamp it to the last day of a shorter month, so Jan 31 becomes Feb 28
// (or Feb 29) and Mar 31 becomes Apr 30.
func Step(t time.Time, frequency model.Frequency) (time.Time, error) {
	return stepN(t, frequency, 1)
}

// stepN moves t forward by n periods from the same anchor, so a clamped
// month does not shorten the months after it: Jan 31 + 2 months is Mar 31.
func stepN(t time.Time, frequency model.Frequency, n int) (time.Time, error) {
	switch frequency {
	case model.FrequencyWeekly:
		return t.AddDate(0, 0, 7*n), nil
	case model.FrequencyBiweekly:
		return t.AddDate(0, 0, 14*n), nil
	case model.FrequencyMonthly:
		return addMonthsClamped(t, n), nil
	default:
		return t, fmt.Errorf("unknown frequency %q", frequency)
	}
}

func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	// Day 0 of month+n+1 is the last day of month+n.
	lastDay := time.Date(year, month+time.Month(n)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+time.Month(n), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// NextRunAfter returns the first occurrence after now, counting whole periods
// from executedAt so every missed period is skipped at once. Monthly
// occurrences keep executedAt's day of month.
func NextRunAfter(executedAt time.Time, frequency model.Frequency, now time.Time) (time.Time, error) {
	for n := 1; ; n++ {
		next, err := stepN(executedAt, frequency, n)
		if err != nil {
			return next, err
		}
		if next.After(now) {
			return next, nil
		}
	}
}

// AdvanceSchedule records a run at executedAt and moves nextRunAt to the
// first occurrence after now.
func AdvanceSchedule(s model.CampaignSchedule, executedAt, now time.Time) (model.CampaignSchedule, error) {
	next, err := NextRunAfter(executedAt, s.Frequency, now)
	if err != nil {
		return s, err
	}
	last := executedAt
	s.LastRunAt = &last
	s.NextRunAt = next
	return s, nil
}

func (s *ScheduleService) Create(ctx context.Context, templateID string, frequency model.Frequency, startAt time.Time, notes string) (*model.CampaignSchedule, error) {
	now := s.Now.now()
	if templateID == "" {
		return nil, appErrors.NewValidation("template_id", "select a template to schedule")
	}
	if !frequency.Valid() {
		return nil, appErrors.NewValidation("frequency", "unknown frequency "+string(frequency))
	}
	if startAt.IsZero() {
		return nil, appErrors.NewValidation("start_at", "a valid first run date is required")
	}
	if !startAt.After(now) {
		return nil, appErrors.NewValidation("start_at", "first run must be in the future")
	}

	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	templates, err := uow.Templates()
	if err != nil {
		return nil, err
	}
	var template *model.CampaignTemplate
	for i := range templates {
		if templates[i].ID == templateID {
			template = &templates[i]
			break
		}
	}
	if template == nil {
		return nil, appErrors.NewTemplateNotFound(templateID)
	}

	schedule := model.CampaignSchedule{
		ID:         s.NewID.next(),
		TemplateID: template.ID,
		Segment:    template.Segment,
		Frequency:  frequency,
		CreatedAt:  now,
		NextRunAt:  startAt,
		IsActive:   true,
		Notes:      strings.TrimSpace(notes),
	}
	schedules, err := uow.Schedules()
	if err != nil {
		return nil, err
	}
	uow.PutSchedules(append(schedules, schedule))
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Toggle flips a schedule between active and paused. nextRunAt is untouched.
func (s *ScheduleService) Toggle(ctx context.Context, id string) (*model.CampaignSchedule, error) {
	return s.update(ctx, id, func(sc *model.CampaignSchedule) error {
		sc.IsActive = !sc.IsActive
		return nil
	})
}

// Advance marks one schedule as executed at executedAt (now when zero),
// whatever its state.
func (s *ScheduleService) Advance(ctx context.Context, id string, executedAt time.Time) (*model.CampaignSchedule, error) {
	now := s.Now.now()
	if executedAt.IsZero() {
		executedAt = now
	}
	return s.update(ctx, id, func(sc *model.CampaignSchedule) error {
		advanced, err := AdvanceSchedule(*sc, executedAt, now)
		if err != nil {
			return err
		}
		*sc = advanced
		return nil
	})
}

// AdvanceAllForTemplate advances every active schedule bound to templateID
// and returns how many moved.
func (s *ScheduleService) AdvanceAllForTemplate(ctx context.Context, templateID string, executedAt time.Time) (int, error) {
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	n, err := advanceAllForTemplate(uow, templateID, executedAt, s.Now.now(), s.Log)
	if err != nil {
		return 0, err
	}
	return n, uow.Commit()
}

func advanceAllForTemplate(uow *repository.UnitOfWork, templateID string, executedAt, now time.Time, log *logger.Logger) (int, error) {
	schedules, err := uow.Schedules()
	if err != nil {
		return 0, err
	}
	advanced := 0
	for i := range schedules {
		sc := schedules[i]
		if sc.TemplateID != templateID || !sc.IsActive {
			continue
		}
		next, err := AdvanceSchedule(sc, executedAt, now)
		if err != nil {
			log.Warn("skipping schedule with invalid frequency", "schedule_id", sc.ID, "error", err)
			continue
		}
		schedules[i] = next
		advanced++
	}
	if advanced > 0 {
		uow.PutSchedules(schedules)
	}
	return advanced, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	schedules, err := uow.Schedules()
	if err != nil {
		return err
	}
	kept := make([]model.CampaignSchedule, 0, len(schedules))
	for _, sc := range schedules {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	if len(kept) == len(schedules) {
		return appErrors.NewScheduleNotFound(id)
	}
	uow.PutSchedules(kept)
	return uow.Commit()
}

func (s *ScheduleService) update(ctx context.Context, id string, fn func(*model.CampaignSchedule) error) (*model.CampaignSchedule, error) {
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	schedules, err := uow.Schedules()
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		if schedules[i].ID != id {
			continue
		}
		if err := fn(&schedules[i]); err != nil {
			return nil, err
		}
		updated := schedules[i]
		uow.PutSchedules(schedules)
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, appErrors.NewScheduleNotFound(id)
}

// List returns every schedule ordered by nextRunAt, earliest first.
func (s *ScheduleService) List(ctx context.Context) ([]ScheduleView, error) {
	schedules, err := s.Repos.Schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.Repos.Templates.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()

	views := make([]ScheduleView, 0, len(schedules))
	for _, sc := range schedules {
		name := templateLabel(templates, sc.TemplateID)
		if name == MissingTemplateLabel {
			s.Log.Warn("schedule references missing template", "schedule_id", sc.ID, "template_id", sc.TemplateID)
		}
		views = append(views, ScheduleView{
			CampaignSchedule: sc,
			TemplateName:     name,
			Overdue:          sc.IsOverdue(now),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].NextRunAt.Before(views[j].NextRunAt)
	})
	return views, nil
}

func (s *ScheduleService) Overdue(ctx context.Context) ([]ScheduleView, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []ScheduleView{}
	for _, v := range views {
		if v.Overdue {
			out = append(out, v)
		}
	}
	return out, nil
}

// Summary groups active schedules into overdue, due within seven days, and
// the next one to run.
func (s *ScheduleService) Summary(ctx context.Context) (*CampaignSummary, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()
	summary := &CampaignSummary{Overdue: []ScheduleView{}, Upcoming: []ScheduleView{}}
	for i := range views {
		v := views[i]
		if !v.IsActive {
			continue
		}
		summary.ActiveCount++
		switch {
		case v.Overdue:
			summary.Overdue = append(summary.Overdue, v)
		case !v.NextRunAt.After(now.Add(upcomingWindow)):
			summary.Upcoming = append(summary.Upcoming, v)
		}
		if summary.Next == nil && v.NextRunAt.After(now) {
			summary.Next = &views[i]
		}
	}
	return summary, nil
}
