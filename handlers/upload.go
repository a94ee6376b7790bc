package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/camden-git/photomscompanion/uploader"
)

// UploadHandler feeds local files into the background upload queue.
type UploadHandler struct {
	Uploader *uploader.Uploader
}

// Enqueue queues a single file or every supported image in a directory.
// Completion is reported over the websocket, not this response.
func (uh *UploadHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Dir  string `json:"dir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	switch {
	case req.Path != "":
		if !uh.Uploader.QueueFile(req.Path) {
			writeError(w, http.StatusBadRequest, "file is not a supported image or is already queued")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"queued": 1})
	case req.Dir != "":
		queued, err := uh.Uploader.QueueDir(req.Dir)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"queued": queued})
	default:
		writeError(w, http.StatusBadRequest, "either 'path' or 'dir' is required")
	}
}
