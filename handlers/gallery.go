package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/photomscompanion/gallery"
)

// GalleryHandler exposes the collection query state machine to the UI. Every
// mutation responds with the fresh state snapshot so the UI can render
// without a second round trip.
type GalleryHandler struct {
	Controller *gallery.Controller
}

func (gh *GalleryHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// Search records a search keystroke; the query key only changes once the
// input has been stable for the quiet period.
func (gh *GalleryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	gh.Controller.TypeSearch(req.Text)
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// SetFilters applies tag and date-range filters. Absent fields are left
// unchanged; page resets whenever a value actually changes.
func (gh *GalleryHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tag       *string `json:"tag"`
		StartDate *string `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.StartDate != nil && !gallery.ValidDate(*req.StartDate) {
		writeError(w, http.StatusBadRequest, "Invalid start date: "+*req.StartDate)
		return
	}
	if req.EndDate != nil && !gallery.ValidDate(*req.EndDate) {
		writeError(w, http.StatusBadRequest, "Invalid end date: "+*req.EndDate)
		return
	}

	if req.Tag != nil {
		gh.Controller.SetTag(*req.Tag)
	}
	if req.StartDate != nil {
		gh.Controller.SetStartDate(*req.StartDate)
	}
	if req.EndDate != nil {
		gh.Controller.SetEndDate(*req.EndDate)
	}
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// ShowRecent applies the "recent uploads" shortcut.
func (gh *GalleryHandler) ShowRecent(w http.ResponseWriter, r *http.Request) {
	gh.Controller.ShowRecent()
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// ClearFilters drops tag and date filters, keeping the search text.
func (gh *GalleryHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	gh.Controller.ClearFilters()
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// ResetAll clears everything including the committed search value.
func (gh *GalleryHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	gh.Controller.ResetAll()
	writeJSON(w, http.StatusOK, gh.Controller.State())
}

// Page navigates forward or backward. Out-of-bounds navigation is a no-op,
// not an error; the returned state simply shows the unchanged page.
func (gh *GalleryHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	switch req.Dir {
	case "next":
		gh.Controller.NextPage()
	case "prev":
		gh.Controller.PrevPage()
	default:
		writeError(w, http.StatusBadRequest, "dir must be 'next' or 'prev'")
		return
	}
	writeJSON(w, http.StatusOK, gh.Controller.State())
}
