package uploader

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifPeek is the small pre-upload metadata subset shown to the user while
// the upload runs. The server's full extraction replaces it once the photo
// entity comes back.
type ExifPeek struct {
	CameraMake  string `json:"cameraMake,omitempty"`
	CameraModel string `json:"cameraModel,omitempty"`
	TakenAt     string `json:"takenAt,omitempty"` // RFC3339
}

// getString safely reads a string tag, trimming null terminators.
func getString(exifData *exif.Exif, tagName exif.FieldName) string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return ""
	}
	return strings.TrimRight(strings.Trim(tag.String(), "\""), "\x00")
}

// PeekExif extracts camera make/model and the capture time from a local
// file. Missing or unreadable EXIF is not an error; the peek is just empty.
func PeekExif(filePath string) ExifPeek {
	file, err := os.Open(filePath)
	if err != nil {
		return ExifPeek{}
	}
	defer file.Close()

	exifData, err := exif.Decode(file)
	if err != nil {
		// file simply lacks EXIF data
		return ExifPeek{}
	}

	peek := ExifPeek{
		CameraMake:  getString(exifData, exif.Make),
		CameraModel: getString(exifData, exif.Model),
	}
	if dt, dtErr := exifData.DateTime(); dtErr == nil {
		peek.TakenAt = dt.Format(time.RFC3339)
	} else {
		log.Printf("uploader: no capture time in %s: %v", filePath, dtErr)
	}
	return peek
}
