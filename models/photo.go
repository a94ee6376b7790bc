package models

// TagSource identifies who attached a tag to a photo.
const (
	TagSourceUser = "USER"
	TagSourceAI   = "AI"
)

// Tag is a single label on a photo. Name is case-preserving for display but
// case-insensitive for identity; Score is only set on AI tags.
type Tag struct {
	Name   string  `json:"name"`
	Source string  `json:"source"`
	Score  float64 `json:"score,omitempty"`
}

// GPSInfo holds the decoded EXIF GPS position.
type GPSInfo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ExifInfo mirrors the EXIF record the server extracts on upload.
type ExifInfo struct {
	Make         string   `json:"make,omitempty"`
	Model        string   `json:"model,omitempty"`
	Lens         string   `json:"lens,omitempty"`
	ISO          int      `json:"iso,omitempty"`
	Aperture     float64  `json:"aperture,omitempty"`
	ShutterSpeed string   `json:"shutterSpeed,omitempty"`
	FocalLength  float64  `json:"focalLength,omitempty"`
	GPS          *GPSInfo `json:"gps,omitempty"`
	TakenAt      string   `json:"takenAt,omitempty"`
}

// Photo is the full photo entity as served by the remote API. Identity is the
// opaque server-assigned ID.
type Photo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileName    string    `json:"fileName"`
	Path        string    `json:"path"`
	ThumbPath   string    `json:"thumbPath"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	Exif        *ExifInfo `json:"exif,omitempty"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// CollectionPage is one page of list results. Total is authoritative for
// computing the page count; Items never exceeds Limit.
type CollectionPage struct {
	Items []Photo `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// UpdatePhotoRequest carries a partial metadata update. A non-nil Tags slice
// entirely replaces the photo's persisted tag list; it is a pointer so that
// committing an empty list is distinguishable from leaving tags untouched.
type UpdatePhotoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Tags        *[]Tag  `json:"tags,omitempty"`
}
