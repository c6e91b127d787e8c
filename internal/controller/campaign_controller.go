package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	DraftService    *service.DraftService
	Log             *logger.Logger
}

type draftCampaignRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type executeCampaignRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
	Message    string `json:"message"`
}

// Draft generates a campaign message for a template. Nothing is stored.
func (c *CampaignController) Draft(w http.ResponseWriter, r *http.Request) {
	var body draftCampaignRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := c.DraftService.DraftCampaign(r.Context(), body.TemplateID)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Execute records a campaign run for the template's current segment.
func (c *CampaignController) Execute(w http.ResponseWriter, r *http.Request) {
	var body executeCampaignRequest
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := c.CampaignService.Execute(r.Context(), service.ExecuteCampaignCommand{
		TemplateID: body.TemplateID,
		Message:    body.Message,
	})
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (c *CampaignController) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}
	runs, err := c.CampaignService.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": runs})
}

// SegmentMembers previews who a campaign for the segment would reach.
func (c *CampaignController) SegmentMembers(w http.ResponseWriter, r *http.Request) {
	segment := model.Segment(chi.URLParam(r, "segment"))
	members, err := c.CampaignService.SegmentMembers(r.Context(), segment)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"segment": segment,
		"count":   len(members),
		"data":    members,
	})
}
