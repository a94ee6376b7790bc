package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/session"
)

// Collection is the slice of the gallery controller the session handler
// needs: after a login the cached pages belong to the previous (or no)
// account and must be refetched.
type Collection interface {
	Invalidate()
}

// SessionHandler exposes login state to the UI.
type SessionHandler struct {
	Manager    *session.Manager
	Collection Collection
}

type sessionStateResponse struct {
	LoggedIn bool        `json:"loggedIn"`
	User     interface{} `json:"user,omitempty"`
}

func (sh *SessionHandler) sessionState() sessionStateResponse {
	resp := sessionStateResponse{LoggedIn: sh.Manager.LoggedIn()}
	if resp.LoggedIn {
		resp.User = sh.Manager.CurrentUser()
	}
	return resp
}

func (sh *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sh.sessionState())
}

// Login authenticates against the remote server. A rejected login surfaces
// the server's message with a 401 so the UI can show it inline.
func (sh *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := sh.Manager.Login(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, api.UserMessage(err))
		return
	}

	if sh.Collection != nil {
		sh.Collection.Invalidate()
	}
	writeJSON(w, http.StatusOK, sh.sessionState())
}

// Register creates an account and logs it in.
func (sh *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := sh.Manager.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, api.UserMessage(err))
		return
	}

	if sh.Collection != nil {
		sh.Collection.Invalidate()
	}
	writeJSON(w, http.StatusCreated, sh.sessionState())
}

func (sh *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := sh.Manager.Logout(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear persisted session")
		return
	}
	writeJSON(w, http.StatusOK, sh.sessionState())
}
