package handlers

import (
	"net/http"
	"strconv"

	"github.com/camden-git/photomscompanion/gallery"
	"github.com/camden-git/photomscompanion/store"
)

// MirrorHandler serves the offline photo mirror, used when the remote
// server is unreachable. It answers the same kinds of questions the live
// collection does (text, tag, date range) from the local database.
type MirrorHandler struct {
	Store *store.Store
}

func (mh *MirrorHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	startDate := q.Get("startDate")
	endDate := q.Get("endDate")
	if !gallery.ValidDate(startDate) {
		writeError(w, http.StatusBadRequest, "Invalid start date: "+startDate)
		return
	}
	if !gallery.ValidDate(endDate) {
		writeError(w, http.StatusBadRequest, "Invalid end date: "+endDate)
		return
	}

	results, err := mh.Store.SearchMirror(store.MirrorQuery{
		FreeText:  q.Get("q"),
		Tag:       q.Get("tag"),
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     gallery.PageSize,
		Offset:    (page - 1) * gallery.PageSize,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "mirror query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": results,
		"page":  page,
	})
}
