package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

type ScheduleController struct {
	ScheduleService *service.ScheduleService
	Log             *logger.Logger
}

type createScheduleRequest struct {
	TemplateID string          `json:"template_id" validate:"required"`
	Frequency  model.Frequency `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	StartAt    time.Time       `json:"start_at" validate:"required"`
	Notes      string          `json:"notes"`
}

type markExecutedRequest struct {
	ExecutedAt *time.Time `json:"executed_at"`
}

func (c *ScheduleController) List(w http.ResponseWriter, r *http.Request) {
	views, err := c.ScheduleService.List(r.Context())
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

func (c *ScheduleController) Create(w http.ResponseWriter, r *http.Request) {
	var body createScheduleRequest
	if !decodeBody(w, r, &body) {
		return
	}
	sc, err := c.ScheduleService.Create(r.Context(), body.TemplateID, body.Frequency, body.StartAt, body.Notes)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (c *ScheduleController) Toggle(w http.ResponseWriter, r *http.Request) {
	sc, err := c.ScheduleService.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// MarkExecuted advances one schedule. An empty body means executed now.
func (c *ScheduleController) MarkExecuted(w http.ResponseWriter, r *http.Request) {
	var body markExecutedRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	var executedAt time.Time
	if body.ExecutedAt != nil {
		executedAt = *body.ExecutedAt
	}
	sc, err := c.ScheduleService.Advance(r.Context(), chi.URLParam(r, "id"), executedAt)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (c *ScheduleController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.ScheduleService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
