package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

// DashboardHandler serves the aggregated views of the instructor dashboard
type DashboardHandler struct {
	FollowUps *service.FollowUpService
	Schedules *service.ScheduleService
	Log       *logger.Logger
}

// NewDashboardHandler creates a DashboardHandler with the given services
func NewDashboardHandler(followUps *service.FollowUpService, schedules *service.ScheduleService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		FollowUps: followUps,
		Schedules: schedules,
		Log:       log.With("service", "DashboardHandler"),
	}
}

// FollowUpsHandler returns open tasks across members, oldest first
func (h *DashboardHandler) FollowUpsHandler(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	switch filter {
	case "", service.FollowUpFilterAll, service.FollowUpFilterRisk, service.FollowUpFilterCampaign, service.FollowUpFilterOverdue:
	default:
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}

	overview, err := h.FollowUps.PendingOverview(r.Context(), filter)
	if err != nil {
		h.Log.Error("failed to build follow-up overview", "error", err)
		http.Error(w, "failed to fetch follow-ups", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(overview)
}

// CampaignsHandler returns the schedule summary: overdue, upcoming and next run
func (h *DashboardHandler) CampaignsHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Schedules.Summary(r.Context())
	if err != nil {
		h.Log.Error("failed to build campaign summary", "error", err)
		http.Error(w, "failed to fetch campaign summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}
