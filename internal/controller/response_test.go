package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
)

func TestWriteErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", appErrors.NewValidation("name", "required"), http.StatusBadRequest},
		{"reference", appErrors.NewMemberNotFound("m1"), http.StatusNotFound},
		{"external", appErrors.NewExternalService("gemini", errors.New("timeout")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, logger.NewNop(), tt.err)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
