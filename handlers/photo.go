package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/photomscompanion/editor"
	"github.com/camden-git/photomscompanion/gallery"
	"github.com/camden-git/photomscompanion/models"
)

// PhotoHandler exposes detail-view reads and metadata/tag mutations.
type PhotoHandler struct {
	Controller *gallery.Controller
}

func (ph *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	photo, err := ph.Controller.Photo(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// UpdatePhoto edits title and description. A failed update leaves the cached
// entity untouched, so the UI keeps showing the pre-mutation fields.
func (ph *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	photo, err := ph.Controller.UpdatePhoto(r.Context(), id, models.UpdatePhotoRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

func (ph *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	if err := ph.Controller.DeletePhoto(r.Context(), id); err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Photo deleted successfully"})
}

func (ph *PhotoHandler) GenerateAITags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	photo, err := ph.Controller.GenerateAITags(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// AddTag appends a user tag. Empty names and case-insensitive duplicates
// (including AI tags) are silent no-ops: the unchanged photo comes back and
// no remote call is made.
func (ph *PhotoHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	photo, err := ph.Controller.Photo(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	tags := editor.NewTagSet(photo.Tags)
	if !tags.Add(req.Name) {
		writeJSON(w, http.StatusOK, photo)
		return
	}

	committed := tags.Tags()
	updated, err := ph.Controller.UpdatePhoto(r.Context(), id, models.UpdatePhotoRequest{Tags: &committed})
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveTag removes the tag at a position; the edited sequence replaces the
// photo's whole tag list on the server.
func (ph *PhotoHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "photo_id")

	index, err := strconv.Atoi(chi.URLParam(r, "tag_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tag index")
		return
	}

	photo, err := ph.Controller.Photo(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err)
		return
	}

	tags := editor.NewTagSet(photo.Tags)
	if !tags.RemoveAt(index) {
		writeJSON(w, http.StatusOK, photo)
		return
	}

	committed := tags.Tags()
	updated, err := ph.Controller.UpdatePhoto(r.Context(), id, models.UpdatePhotoRequest{Tags: &committed})
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
