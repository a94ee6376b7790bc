package editor

import (
	"fmt"
	"math"

	"github.com/camden-git/photomscompanion/models"
)

// Viewport describes the displayed image element and the underlying asset's
// natural (original) resolution. Crop selections are made against the
// displayed size and must be mapped into natural pixels before submission.
type Viewport struct {
	DisplayWidth  float64 `json:"displayWidth"`
	DisplayHeight float64 `json:"displayHeight"`
	NaturalWidth  int     `json:"naturalWidth"`
	NaturalHeight int     `json:"naturalHeight"`
}

// Valid reports whether the viewport can be used for coordinate resolution.
func (v Viewport) Valid() bool {
	return v.DisplayWidth > 0 && v.DisplayHeight > 0 && v.NaturalWidth > 0 && v.NaturalHeight > 0
}

// Selection is the tagged crop variant: no crop at all, a percentage
// selection relative to the displayed image, or a finalized pixel selection
// in displayed-image space from the last completed drag.
type Selection interface {
	// displayRect resolves the selection to displayed-space pixels.
	displayRect(v Viewport) (x, y, w, h float64)
}

// NoCrop means cropping is not applied; it always resolves to the zero
// sentinel.
type NoCrop struct{}

func (NoCrop) displayRect(Viewport) (float64, float64, float64, float64) {
	return 0, 0, 0, 0
}

// PercentCrop is a selection in percentages of the displayed image.
type PercentCrop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p PercentCrop) displayRect(v Viewport) (float64, float64, float64, float64) {
	return p.X / 100 * v.DisplayWidth,
		p.Y / 100 * v.DisplayHeight,
		p.Width / 100 * v.DisplayWidth,
		p.Height / 100 * v.DisplayHeight
}

// PixelCrop is a finalized selection in displayed-image pixels.
type PixelCrop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p PixelCrop) displayRect(Viewport) (float64, float64, float64, float64) {
	return p.X, p.Y, p.Width, p.Height
}

// FullImage is the initial selection covering the whole displayed image.
func FullImage() PercentCrop {
	return PercentCrop{X: 0, Y: 0, Width: 100, Height: 100}
}

// Resolve maps a selection into natural-resolution pixel coordinates. A nil
// or NoCrop selection, an unusable viewport, or a selection whose resolved
// width or height is zero all yield the zero sentinel, which the server
// interprets as "no crop applied".
func Resolve(sel Selection, view Viewport) models.PixelRect {
	if sel == nil {
		return models.PixelRect{}
	}
	if _, none := sel.(NoCrop); none || !view.Valid() {
		return models.PixelRect{}
	}

	x, y, w, h := sel.displayRect(view)
	sx := float64(view.NaturalWidth) / view.DisplayWidth
	sy := float64(view.NaturalHeight) / view.DisplayHeight

	rect := models.PixelRect{
		X:      int(math.Round(x * sx)),
		Y:      int(math.Round(y * sy)),
		Width:  int(math.Round(w * sx)),
		Height: int(math.Round(h * sy)),
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return models.PixelRect{}
	}
	return rect
}

// ToneAdjustment holds the brightness/contrast/saturation offsets, each an
// integer in [-50, 50] with 0 meaning identity. Offsets are submitted as-is;
// the client never bakes them into pixel data before upload.
type ToneAdjustment struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
}

// ToneMin and ToneMax bound each tone offset.
const (
	ToneMin = -50
	ToneMax = 50
)

func clampTone(v int) int {
	if v < ToneMin {
		return ToneMin
	}
	if v > ToneMax {
		return ToneMax
	}
	return v
}

// Clamped returns the adjustment with every offset forced into range.
func (t ToneAdjustment) Clamped() ToneAdjustment {
	return ToneAdjustment{
		Brightness: clampTone(t.Brightness),
		Contrast:   clampTone(t.Contrast),
		Saturation: clampTone(t.Saturation),
	}
}

// IsIdentity reports whether all offsets are zero.
func (t ToneAdjustment) IsIdentity() bool {
	return t.Brightness == 0 && t.Contrast == 0 && t.Saturation == 0
}

// CSSFilter renders the live-preview filter string used by the browser UI: a
// multiplier of (100 + offset) percent per channel.
func (t ToneAdjustment) CSSFilter() string {
	return fmt.Sprintf("brightness(%d%%) contrast(%d%%) saturate(%d%%)",
		100+t.Brightness, 100+t.Contrast, 100+t.Saturation)
}
