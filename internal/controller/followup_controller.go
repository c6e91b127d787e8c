package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

type FollowUpController struct {
	FollowUpService *service.FollowUpService
	Log             *logger.Logger
}

type addTaskRequest struct {
	Title string `json:"title" validate:"required"`
}

type contactRequest struct {
	Note string `json:"note"`
}

func (c *FollowUpController) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.FollowUpService.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tasks})
}

func (c *FollowUpController) AddTask(w http.ResponseWriter, r *http.Request) {
	var body addTaskRequest
	if !decodeBody(w, r, &body) {
		return
	}
	task, err := c.FollowUpService.Add(r.Context(), chi.URLParam(r, "id"), body.Title)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (c *FollowUpController) Complete(w http.ResponseWriter, r *http.Request) {
	task, err := c.FollowUpService.Complete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"))
	c.writeTask(w, task, err)
}

func (c *FollowUpController) Snooze(w http.ResponseWriter, r *http.Request) {
	task, err := c.FollowUpService.Snooze(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"))
	c.writeTask(w, task, err)
}

// writeTask answers 204 when the task did not exist, since unknown task ids
// are ignored rather than rejected.
func (c *FollowUpController) writeTask(w http.ResponseWriter, task *model.FollowUpTask, err error) {
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (c *FollowUpController) Interactions(w http.ResponseWriter, r *http.Request) {
	entries, err := c.FollowUpService.Interactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (c *FollowUpController) LogContact(w http.ResponseWriter, r *http.Request) {
	var body contactRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	entry, err := c.FollowUpService.LogContact(r.Context(), chi.URLParam(r, "id"), body.Note)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
