package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

// MemberController serves per-member views: attendance, messages, drafts
// and feedback.
type MemberController struct {
	AttendanceService *service.AttendanceService
	CampaignService   *service.CampaignService
	DraftService      *service.DraftService
	FeedbackService   *service.FeedbackService
	Log               *logger.Logger
}

type attendanceRequest struct {
	Date    string `json:"date"`
	Present *bool  `json:"present" validate:"required"`
}

type saveMessageRequest struct {
	Message    string `json:"message" validate:"required"`
	TemplateID string `json:"template_id"`
}

type feedbackRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment"`
	ClassName  string `json:"class_name"`
	Instructor string `json:"instructor"`
}

// List returns members with attendance metrics. ?focus=flagged|chronic
// narrows the list.
func (c *MemberController) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := c.AttendanceService.MemberStatuses(r.Context(), r.URL.Query().Get("focus"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": statuses})
}

func (c *MemberController) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := c.AttendanceService.Metrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": m,
		"flag":    service.ClassifyAttendance(m),
		"chronic": service.IsChronic(m),
	})
}

func (c *MemberController) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var body attendanceRequest
	if !decodeBody(w, r, &body) {
		return
	}
	ev, err := c.AttendanceService.Record(r.Context(), chi.URLParam(r, "id"), body.Date, *body.Present)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (c *MemberController) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	dump, err := c.AttendanceService.Export(r.Context())
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.json"`)
	writeJSON(w, http.StatusOK, dump)
}

func (c *MemberController) ResetAttendance(w http.ResponseWriter, r *http.Request) {
	if err := c.AttendanceService.Reset(r.Context()); err != nil {
		writeError(w, c.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *MemberController) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.CampaignService.MemberMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": msgs})
}

func (c *MemberController) SaveMessage(w http.ResponseWriter, r *http.Request) {
	var body saveMessageRequest
	if !decodeBody(w, r, &body) {
		return
	}
	entry, err := c.CampaignService.LogMemberMessage(r.Context(), chi.URLParam(r, "id"), body.TemplateID, body.Message)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (c *MemberController) DraftMotivation(w http.ResponseWriter, r *http.Request) {
	res, err := c.DraftService.DraftMotivation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *MemberController) DraftInsight(w http.ResponseWriter, r *http.Request) {
	res, err := c.DraftService.DraftInsight(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *MemberController) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	records, err := c.FeedbackService.List(r.Context(), id)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  records,
		"stats": service.ComputeFeedbackStats(records),
	})
}

func (c *MemberController) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackRequest
	if !decodeBody(w, r, &body) {
		return
	}
	rec, err := c.FeedbackService.Submit(r.Context(), chi.URLParam(r, "id"), service.FeedbackInput{
		Rating:     body.Rating,
		Comment:    body.Comment,
		ClassName:  body.ClassName,
		Instructor: body.Instructor,
	})
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
