package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	RegisterRoutes(router)

	tests := []struct {
		path        string
		wantStatus  int
		wantContent string
	}{
		{path: "/", wantStatus: http.StatusOK, wantContent: "CineRealm"},
		{path: "/static/style.css", wantStatus: http.StatusOK, wantContent: "--theme"},
		{path: "/static/app.js", wantStatus: http.StatusOK, wantContent: "ws/player"},
		{path: "/static/missing.js", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.wantStatus, rec.Code)
		}
		if tt.wantContent != "" && !strings.Contains(rec.Body.String(), tt.wantContent) {
			t.Errorf("GET %s: body missing %q", tt.path, tt.wantContent)
		}
	}
}
