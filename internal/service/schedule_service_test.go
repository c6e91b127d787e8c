package service_test

import (
	"context"
	"testing"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

func TestStepMonthlyClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"2025-01-31", "2025-02-28"},
		{"2024-01-31", "2024-02-29"},
		{"2025-03-31", "2025-04-30"},
		{"2025-12-31", "2026-01-31"},
		{"2025-05-15", "2025-06-15"},
	}
	for _, tt := range tests {
		from, _ := time.Parse(model.AttendanceDateLayout, tt.from)
		got, err := service.Step(from, model.FrequencyMonthly)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if got.Format(model.AttendanceDateLayout) != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.from, tt.want, got.Format(model.AttendanceDateLayout))
		}
	}
}

func TestStepWeeklyAndBiweekly(t *testing.T) {
	weekly, _ := service.Step(testNow, model.FrequencyWeekly)
	biweekly, _ := service.Step(testNow, model.FrequencyBiweekly)
	if !weekly.Equal(testNow.AddDate(0, 0, 7)) || !biweekly.Equal(testNow.AddDate(0, 0, 14)) {
		t.Errorf("unexpected steps %v %v", weekly, biweekly)
	}
	if _, err := service.Step(testNow, model.Frequency("daily")); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestNextRunAfterSkipsMissedPeriods(t *testing.T) {
	executed := testNow.AddDate(0, 0, -30)
	next, err := service.NextRunAfter(executed, model.FrequencyWeekly, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !next.After(testNow) {
		t.Fatalf("next run %v is not after now", next)
	}
	if prev := next.AddDate(0, 0, -7); prev.After(testNow) {
		t.Errorf("next run %v skipped an occurrence that is still in the future", next)
	}
	if !next.Equal(executed.AddDate(0, 0, 35)) {
		t.Errorf("expected %v, got %v", executed.AddDate(0, 0, 35), next)
	}
}

func TestNextRunAfterExactlyNowSteps(t *testing.T) {
	next, _ := service.NextRunAfter(testNow.AddDate(0, 0, -7), model.FrequencyWeekly, testNow)
	if !next.Equal(testNow.AddDate(0, 0, 7)) {
		t.Errorf("an occurrence equal to now must be skipped, got %v", next)
	}
}

func TestNextRunAfterMonthlyKeepsAnchorDay(t *testing.T) {
	executed := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)},
		{time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)},
		{time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := service.NextRunAfter(executed, model.FrequencyMonthly, tt.now)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("now %s: expected %s, got %s", tt.now.Format(time.DateOnly), tt.want, got)
		}
	}
}

func newScheduleService(t *testing.T) *service.ScheduleService {
	t.Helper()
	repos := newRepos(t, nil)
	seedTemplates(t, repos, model.CampaignTemplate{ID: "t1", Name: "Reactivación", Segment: model.SegmentHighRisk})
	return &service.ScheduleService{
		Repos: repos,
		Log:   logger.NewNop(),
		Now:   fixedClock(testNow),
		NewID: sequentialIDs("s"),
	}
}

func TestCreateSchedule(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	sc, err := svc.Create(ctx, "t1", model.FrequencyWeekly, start, " lunes ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sc.ID != "s-1" || !sc.IsActive || sc.Segment != model.SegmentHighRisk || !sc.NextRunAt.Equal(start) {
		t.Errorf("unexpected schedule %+v", sc)
	}
	if sc.LastRunAt != nil || sc.Notes != "lunes" {
		t.Errorf("unexpected schedule %+v", sc)
	}
}

func TestCreateScheduleRejectsBadInput(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	future := testNow.Add(time.Hour)

	if _, err := svc.Create(ctx, "t1", model.FrequencyWeekly, testNow, ""); !appErrors.IsValidation(err) {
		t.Errorf("start at now: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "t1", model.FrequencyWeekly, testNow.Add(-time.Hour), ""); !appErrors.IsValidation(err) {
		t.Errorf("start in past: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "t1", model.FrequencyWeekly, time.Time{}, ""); !appErrors.IsValidation(err) {
		t.Errorf("zero start: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "t1", model.Frequency("daily"), future, ""); !appErrors.IsValidation(err) {
		t.Errorf("bad frequency: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "", model.FrequencyWeekly, future, ""); !appErrors.IsValidation(err) {
		t.Errorf("empty template: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "nope", model.FrequencyWeekly, future, ""); !appErrors.IsReference(err) {
		t.Errorf("unknown template: expected reference error, got %v", err)
	}
}

func TestToggleKeepsNextRun(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	sc, _ := svc.Create(ctx, "t1", model.FrequencyMonthly, testNow.Add(time.Hour), "")

	paused, err := svc.Toggle(ctx, sc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paused.IsActive || !paused.NextRunAt.Equal(sc.NextRunAt) {
		t.Errorf("unexpected toggle result %+v", paused)
	}
	resumed, _ := svc.Toggle(ctx, sc.ID)
	if !resumed.IsActive {
		t.Error("expected schedule active again")
	}
	if _, err := svc.Toggle(ctx, "missing"); !appErrors.IsReference(err) {
		t.Errorf("expected reference error, got %v", err)
	}
}

func TestAdvanceAllForTemplateSkipsPausedAndOtherTemplates(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	past := testNow.AddDate(0, 0, -1)
	seedSchedules(t, svc.Repos,
		model.CampaignSchedule{ID: "a", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: past, IsActive: true},
		model.CampaignSchedule{ID: "b", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: past, IsActive: false},
		model.CampaignSchedule{ID: "c", TemplateID: "t2", Frequency: model.FrequencyWeekly, NextRunAt: past, IsActive: true},
	)

	n, err := svc.AdvanceAllForTemplate(ctx, "t1", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 advanced, got %d", n)
	}
	all, _ := svc.Repos.Schedules.List(ctx)
	for _, sc := range all {
		switch sc.ID {
		case "a":
			if sc.LastRunAt == nil || !sc.LastRunAt.Equal(testNow) || !sc.NextRunAt.After(testNow) {
				t.Errorf("active schedule not advanced: %+v", sc)
			}
		default:
			if sc.LastRunAt != nil || !sc.NextRunAt.Equal(past) {
				t.Errorf("schedule %s should be untouched: %+v", sc.ID, sc)
			}
		}
	}
}

func TestAdvanceAppliesToPausedSchedule(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	seedSchedules(t, svc.Repos, model.CampaignSchedule{
		ID: "p", TemplateID: "t1", Frequency: model.FrequencyBiweekly, NextRunAt: testNow.AddDate(0, 0, -2), IsActive: false,
	})
	sc, err := svc.Advance(ctx, "p", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !sc.NextRunAt.Equal(testNow.AddDate(0, 0, 14)) || sc.LastRunAt == nil {
		t.Errorf("unexpected advance %+v", sc)
	}
}

func TestDeleteSchedule(t *testing.T) {
	svc := newScheduleService(t)
	ctx := context.Background()
	sc, _ := svc.Create(ctx, "t1", model.FrequencyWeekly, testNow.Add(time.Hour), "")
	if err := svc.Delete(ctx, sc.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, sc.ID); !appErrors.IsReference(err) {
		t.Errorf("expected reference error on second delete, got %v", err)
	}
}

func TestListLabelsMissingTemplates(t *testing.T) {
	svc := newScheduleService(t)
	seedSchedules(t, svc.Repos,
		model.CampaignSchedule{ID: "late", TemplateID: "gone", Frequency: model.FrequencyWeekly, NextRunAt: testNow.Add(48 * time.Hour), IsActive: true},
		model.CampaignSchedule{ID: "early", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: testNow.Add(-time.Hour), IsActive: true},
	)
	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[0].ID != "early" || views[1].ID != "late" {
		t.Fatalf("expected sorted by next run, got %+v", views)
	}
	if !views[0].Overdue || views[0].TemplateName != "Reactivación" {
		t.Errorf("unexpected first view %+v", views[0])
	}
	if views[1].TemplateName != service.MissingTemplateLabel || views[1].Overdue {
		t.Errorf("unexpected second view %+v", views[1])
	}
}

func TestSummary(t *testing.T) {
	svc := newScheduleService(t)
	seedSchedules(t, svc.Repos,
		model.CampaignSchedule{ID: "overdue", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: testNow.Add(-time.Hour), IsActive: true},
		model.CampaignSchedule{ID: "soon", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: testNow.AddDate(0, 0, 3), IsActive: true},
		model.CampaignSchedule{ID: "later", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: testNow.AddDate(0, 0, 10), IsActive: true},
		model.CampaignSchedule{ID: "paused", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: testNow.Add(-time.Hour), IsActive: false},
	)
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.ActiveCount != 3 {
		t.Errorf("expected 3 active, got %d", sum.ActiveCount)
	}
	if len(sum.Overdue) != 1 || sum.Overdue[0].ID != "overdue" {
		t.Errorf("unexpected overdue %+v", sum.Overdue)
	}
	if len(sum.Upcoming) != 1 || sum.Upcoming[0].ID != "soon" {
		t.Errorf("unexpected upcoming %+v", sum.Upcoming)
	}
	if sum.Next == nil || sum.Next.ID != "soon" {
		t.Errorf("unexpected next %+v", sum.Next)
	}
}
