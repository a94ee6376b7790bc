package editor

import (
	"sync"

	"github.com/camden-git/photomscompanion/models"
)

// Session is one photo's non-destructive edit state: crop enablement, the
// active selection variant and the tone offsets. It is discarded when the
// user navigates away; submitting never mutates the original photo.
type Session struct {
	mu        sync.Mutex
	photoID   string
	enabled   bool
	selection Selection
	tone      ToneAdjustment
}

// NewSession starts an edit session for the given photo in the initial
// state: cropping disabled, full-image selection, identity tones.
func NewSession(photoID string) *Session {
	s := &Session{photoID: photoID}
	s.resetLocked()
	return s
}

// PhotoID returns the photo this session edits.
func (s *Session) PhotoID() string {
	return s.photoID
}

// SetCropEnabled toggles cropping. While disabled, submissions carry the
// zero-crop sentinel regardless of any prior drag state.
func (s *Session) SetCropEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// SetPercentSelection replaces the active selection with a percentage
// selection (in-progress drag state).
func (s *Session) SetPercentSelection(sel PercentCrop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

// SetPixelSelection replaces the active selection with a finalized
// displayed-space pixel selection from a completed drag. It takes precedence
// over any earlier percentage state.
func (s *Session) SetPixelSelection(sel PixelCrop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

// SetTone replaces the tone offsets, clamping each into [-50, 50].
func (s *Session) SetTone(tone ToneAdjustment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tone = tone.Clamped()
}

// Tone returns the current tone offsets.
func (s *Session) Tone() ToneAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tone
}

// CropEnabled reports whether cropping is active.
func (s *Session) CropEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Reset restores the initial state: cropping disabled, full-image selection,
// zero tone offsets. Used by cancel and the explicit "reset crop" action.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.enabled = false
	s.selection = FullImage()
	s.tone = ToneAdjustment{}
}

// Submission builds the immutable payload for the server-side renderer at
// confirm time. With cropping disabled or an unusable viewport the crop
// component is the all-zero sentinel; tone offsets pass through unchanged.
func (s *Session) Submission(view Viewport) models.EditSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sel Selection = NoCrop{}
	if s.enabled {
		sel = s.selection
	}
	rect := Resolve(sel, view)

	return models.EditSubmission{
		CropX:      rect.X,
		CropY:      rect.Y,
		CropW:      rect.Width,
		CropH:      rect.Height,
		Brightness: s.tone.Brightness,
		Contrast:   s.tone.Contrast,
		Saturation: s.tone.Saturation,
	}
}
