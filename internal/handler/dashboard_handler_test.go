package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/handler"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newDashboard(t *testing.T) *handler.DashboardHandler {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	repos := repository.New(db.NewMemoryStore(), log)
	if err := repos.Members.ReplaceAll(ctx, []model.Member{
		{ID: "m1", Name: "Alice", RiskLevel: model.RiskHigh},
		{ID: "m2", Name: "Bruno", RiskLevel: model.RiskLow},
	}); err != nil {
		t.Fatal(err)
	}

	uow := repos.Begin(ctx)
	uow.PutTasks(map[string][]model.FollowUpTask{
		"m1": {{ID: "a", Title: "Seguimiento campaña: Vuelve", CreatedAt: now.Add(-72 * time.Hour)}},
		"m2": {{ID: "b", Title: "Llamar", CreatedAt: now.Add(-time.Hour)}},
	})
	uow.PutTemplates([]model.CampaignTemplate{{ID: "t1", Name: "Vuelve"}})
	uow.PutSchedules([]model.CampaignSchedule{
		{ID: "s1", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: now.Add(-time.Hour), IsActive: true},
		{ID: "s2", TemplateID: "t1", Frequency: model.FrequencyWeekly, NextRunAt: now.Add(48 * time.Hour), IsActive: true},
	})
	if err := uow.Commit(); err != nil {
		t.Fatal(err)
	}

	clock := service.Clock(func() time.Time { return now })
	return handler.NewDashboardHandler(
		&service.FollowUpService{Repos: repos, Members: repos.Members, Log: log, Now: clock},
		&service.ScheduleService{Repos: repos, Log: log, Now: clock},
		log,
	)
}

func TestFollowUpsHandler(t *testing.T) {
	h := newDashboard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/follow-ups?filter=campaign", nil)
	w := httptest.NewRecorder()
	h.FollowUpsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var overview service.FollowUpOverview
	if err := json.NewDecoder(w.Body).Decode(&overview); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(overview.Items) != 1 || overview.Items[0].MemberName != "Alice" {
		t.Errorf("unexpected items %+v", overview.Items)
	}
	if overview.OverdueCount != 1 || overview.CriticalCount != 1 {
		t.Errorf("unexpected counts %+v", overview)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard/follow-ups?filter=bogus", nil)
	w = httptest.NewRecorder()
	h.FollowUpsHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad filter: expected 400, got %d", w.Code)
	}
}

func TestCampaignsHandler(t *testing.T) {
	h := newDashboard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/campaigns", nil)
	w := httptest.NewRecorder()
	h.CampaignsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var summary service.CampaignSummary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.ActiveCount != 2 || len(summary.Overdue) != 1 || summary.Next == nil || summary.Next.ID != "s2" {
		t.Errorf("unexpected summary %+v", summary)
	}
}
