package editor

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/camden-git/photomscompanion/models"
)

// Render produces a local preview of what the server-side renderer will do
// with the given submission: crop first, then tone. This exists purely for
// on-screen feedback; the submitted payload stays parameter-only and the
// server remains the source of truth for the derived photo's pixels.
func Render(src image.Image, sub models.EditSubmission) image.Image {
	out := src

	if sub.CropW > 0 && sub.CropH > 0 {
		b := out.Bounds()
		rect := image.Rect(sub.CropX, sub.CropY, sub.CropX+sub.CropW, sub.CropY+sub.CropH).Intersect(b)
		if !rect.Empty() {
			out = imaging.Crop(out, rect)
		}
	}

	if sub.Brightness != 0 {
		out = imaging.AdjustBrightness(out, float64(sub.Brightness))
	}
	if sub.Contrast != 0 {
		out = imaging.AdjustContrast(out, float64(sub.Contrast))
	}
	if sub.Saturation != 0 {
		out = imaging.AdjustSaturation(out, float64(sub.Saturation))
	}

	return out
}

// RenderStream decodes an image, renders the preview and encodes it as JPEG.
// Used by the bridge's preview endpoint.
func RenderStream(r io.Reader, w io.Writer, sub models.EditSubmission) error {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("editor: decoding preview source: %w", err)
	}

	out := Render(src, sub)
	if err := imaging.Encode(w, out, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("editor: encoding preview: %w", err)
	}
	return nil
}
