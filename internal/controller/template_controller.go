package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

type TemplateController struct {
	TemplateService *service.TemplateService
	Log             *logger.Logger
}

type templateRequest struct {
	Name        string        `json:"name" validate:"required"`
	Segment     model.Segment `json:"segment" validate:"required"`
	Instruction string        `json:"instruction"`
}

type previewRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	templates, err := c.TemplateService.List(r.Context())
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": templates})
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var body templateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	t, err := c.TemplateService.Create(r.Context(), body.Name, body.Segment, body.Instruction)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := c.TemplateService.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	if t == nil {
		writeError(w, c.Log, appErrors.NewTemplateNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (c *TemplateController) Replace(w http.ResponseWriter, r *http.Request) {
	var body templateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	t, err := c.TemplateService.Replace(r.Context(), chi.URLParam(r, "id"), body.Name, body.Segment, body.Instruction)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Preview renders a message for one member with {name}, {discipline} and
// {belt} replaced.
func (c *TemplateController) Preview(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if !decodeBody(w, r, &body) {
		return
	}
	rendered, err := c.TemplateService.Preview(r.Context(), chi.URLParam(r, "id"), body.MemberID, body.Message)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rendered_message": rendered,
		"member_id":        body.MemberID,
	})
}
