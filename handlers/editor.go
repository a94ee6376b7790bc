package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/assets"
	"github.com/camden-git/photomscompanion/editor"
	"github.com/camden-git/photomscompanion/gallery"
)

// EditorHandler manages non-destructive edit sessions for the UI: one
// editor.Session per opened photo, the cached original for preview
// rendering, and the final resolve-and-submit step.
type EditorHandler struct {
	Controller *gallery.Controller
	API        *api.Client
	Assets     *assets.Cache

	mu       sync.Mutex
	sessions map[string]*editSession
}

type editSession struct {
	session      *editor.Session
	originalName string // filename inside the assets cache, "" until downloaded
}

// NewEditorHandler creates the handler with an empty session table.
func NewEditorHandler(controller *gallery.Controller, apiClient *api.Client, cache *assets.Cache) *EditorHandler {
	return &EditorHandler{
		Controller: controller,
		API:        apiClient,
		Assets:     cache,
		sessions:   make(map[string]*editSession),
	}
}

func (eh *EditorHandler) lookup(sid string) (*editSession, bool) {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	es, ok := eh.sessions[sid]
	return es, ok
}

// sessionView is the JSON shape of an edit session's adjustable state.
type sessionView struct {
	SessionID   string                `json:"sessionId"`
	PhotoID     string                `json:"photoId"`
	CropEnabled bool                  `json:"cropEnabled"`
	Tone        editor.ToneAdjustment `json:"tone"`
	CSSFilter   string                `json:"cssFilter"`
}

func viewOf(sid string, s *editor.Session) sessionView {
	tone := s.Tone()
	return sessionView{
		SessionID:   sid,
		PhotoID:     s.PhotoID(),
		CropEnabled: s.CropEnabled(),
		Tone:        tone,
		CSSFilter:   tone.CSSFilter(),
	}
}

// CreateSession opens an edit session for a photo and caches the original
// for local preview rendering.
func (eh *EditorHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photo_id")

	photo, err := eh.Controller.Photo(r.Context(), photoID)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	sid := uuid.NewString()
	es := &editSession{session: editor.NewSession(photoID)}

	// best-effort original download; the session still works without a local
	// preview, the UI then falls back to the CSS filter string
	body, dlErr := eh.API.DownloadOriginal(r.Context(), photo)
	if dlErr == nil {
		name := sid + filepath.Ext(photo.FileName)
		if _, saveErr := eh.Assets.Save(assets.KindOriginal, name, body); saveErr == nil {
			es.originalName = name
		}
		body.Close()
	}

	eh.mu.Lock()
	eh.sessions[sid] = es
	eh.mu.Unlock()

	writeJSON(w, http.StatusCreated, viewOf(sid, es.session))
}

// UpdateSession applies crop/tone changes to a session.
func (eh *EditorHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	es, ok := eh.lookup(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "edit session not found")
		return
	}

	var req struct {
		CropEnabled      *bool                  `json:"cropEnabled"`
		PercentSelection *editor.PercentCrop    `json:"percentSelection"`
		PixelSelection   *editor.PixelCrop      `json:"pixelSelection"`
		Tone             *editor.ToneAdjustment `json:"tone"`
		ResetCrop        bool                   `json:"resetCrop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.ResetCrop {
		es.session.Reset()
	}
	if req.CropEnabled != nil {
		es.session.SetCropEnabled(*req.CropEnabled)
	}
	if req.PercentSelection != nil {
		es.session.SetPercentSelection(*req.PercentSelection)
	}
	if req.PixelSelection != nil {
		es.session.SetPixelSelection(*req.PixelSelection)
	}
	if req.Tone != nil {
		es.session.SetTone(*req.Tone)
	}

	writeJSON(w, http.StatusOK, viewOf(sid, es.session))
}

// viewportFromQuery reads the displayed/natural dimensions the UI measured.
func viewportFromQuery(r *http.Request) editor.Viewport {
	parse := func(key string) float64 {
		v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
		return v
	}
	return editor.Viewport{
		DisplayWidth:  parse("displayWidth"),
		DisplayHeight: parse("displayHeight"),
		NaturalWidth:  int(parse("naturalWidth")),
		NaturalHeight: int(parse("naturalHeight")),
	}
}

// Preview renders the session's current submission against the cached
// original and serves it as JPEG.
func (eh *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	es, ok := eh.lookup(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "edit session not found")
		return
	}
	if es.originalName == "" {
		writeError(w, http.StatusConflict, "original image unavailable for preview")
		return
	}

	src, err := eh.Assets.Open(assets.KindOriginal, es.originalName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cached original unreadable")
		return
	}
	defer src.Close()

	sub := es.session.Submission(viewportFromQuery(r))

	var rendered bytes.Buffer
	if err := editor.RenderStream(src, &rendered, sub); err != nil {
		writeError(w, http.StatusInternalServerError, "preview render failed")
		return
	}

	// keep the latest render in the cache so the UI can re-request it cheaply
	previewName := sid + ".jpg"
	if _, err := eh.Assets.Save(assets.KindPreview, previewName, bytes.NewReader(rendered.Bytes())); err == nil {
		if full, pathErr := eh.Assets.Path(assets.KindPreview, previewName); pathErr == nil {
			http.ServeFile(w, r, full)
			return
		}
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(rendered.Bytes())
}

// Submit resolves the session against the supplied viewport and sends the
// finalized submission. On success the session is closed and the UI receives
// the derived photo's id to navigate to; on failure the session and the
// original photo remain intact for retry.
func (eh *EditorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	es, ok := eh.lookup(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "edit session not found")
		return
	}

	var req struct {
		Viewport editor.Viewport `json:"viewport"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sub := es.session.Submission(req.Viewport)
	result, err := eh.Controller.SubmitEdit(r.Context(), es.session.PhotoID(), sub)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	eh.close(sid, es)
	writeJSON(w, http.StatusOK, result)
}

// DeleteSession cancels an edit session and drops its cached assets.
func (eh *EditorHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "session_id")
	es, ok := eh.lookup(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "edit session not found")
		return
	}

	eh.close(sid, es)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Edit session discarded"})
}

func (eh *EditorHandler) close(sid string, es *editSession) {
	eh.mu.Lock()
	delete(eh.sessions, sid)
	eh.mu.Unlock()

	if es.originalName != "" {
		_ = eh.Assets.Remove(assets.KindOriginal, es.originalName)
	}
	_ = eh.Assets.Remove(assets.KindPreview, sid+".jpg")
}
