package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/session"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRemoteError maps a failed remote call onto the bridge response:
// not-found stays 404 (a terminal display state for the UI), a missing login
// is 401, everything else is a bad gateway carrying the server-supplied
// message when one exists.
func writeRemoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrNotFound):
		writeError(w, http.StatusNotFound, "photo not found")
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not logged in")
	default:
		writeError(w, http.StatusBadGateway, api.UserMessage(err))
	}
}
