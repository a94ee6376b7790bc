package models

// PixelRect is a rectangle in the natural (original, unscaled) resolution of a
// photo. The zero value doubles as the "no crop" sentinel.
type PixelRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether the rect is the no-crop sentinel.
func (r PixelRect) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.Width == 0 && r.Height == 0
}

// EditSubmission is the finalized non-destructive edit payload sent to the
// server-side renderer. Crop coordinates are natural-resolution pixels; an
// all-zero crop means no crop is applied. Tone offsets are signed integers in
// [-50, 50] and are never pre-applied on the client.
type EditSubmission struct {
	CropX      int `json:"cropX"`
	CropY      int `json:"cropY"`
	CropW      int `json:"cropW"`
	CropH      int `json:"cropH"`
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
}

// EditResult is the server's response to an edit submission: the identity of
// the newly derived photo.
type EditResult struct {
	ID string `json:"id"`
}
