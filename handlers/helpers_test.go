package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/session"
)

func TestWriteRemoteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "not found is terminal",
			err:        api.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "photo not found",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("loading detail: %w", api.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "photo not found",
		},
		{
			name:       "missing login",
			err:        fmt.Errorf("api: resolving token: %w", session.ErrNotAuthenticated),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "not logged in",
		},
		{
			name:       "server message passes through",
			err:        &api.Error{Status: 400, Message: "tag name too long"},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "tag name too long",
		},
		{
			name:       "transport failure gets the generic message",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeRemoteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}
