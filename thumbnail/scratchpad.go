// Package thumbnail implements the scratchpad a preset thumbnail is captured
// from: a small RGBA surface that can be cleared, painted on, filled with a
// custom or existing image, and cut out.
package thumbnail

import (
	"image"
	"image/color"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var ErrPaintingDisabled = errors.New("painting is disabled on the scratchpad")

// Scratchpad is safe for concurrent use.
type Scratchpad struct {
	mu         sync.Mutex
	surface    *image.NRGBA
	background color.Color
	cutout     image.Rectangle
	painting   bool
}

// NewScratchpad returns a size x size scratchpad filled with background. The
// cut-out overlay covers the whole surface.
func NewScratchpad(size int, background color.Color) *Scratchpad {
	r := image.Rect(0, 0, size, size)
	s := &Scratchpad{
		surface:    image.NewNRGBA(r),
		background: background,
		cutout:     r,
		painting:   true,
	}
	s.FillDefault()
	return s
}

func (s *Scratchpad) Bounds() image.Rectangle {
	return s.surface.Bounds()
}

// SetCutoutOverlayRect sets the area CutoutOverlay captures. It is clipped to
// the surface.
func (s *Scratchpad) SetCutoutOverlayRect(r image.Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutout = r.Intersect(s.surface.Bounds())
}

// FillDefault fills the surface with the background colour.
func (s *Scratchpad) FillDefault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.surface, s.surface.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

// FillTransparent clears the surface to fully transparent.
func (s *Scratchpad) FillTransparent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.surface, s.surface.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// PaintCustomImage scales img to fit the surface, keeping its aspect ratio,
// and composites it centred over the current content.
func (s *Scratchpad) PaintCustomImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paintFitted(img)
}

// PaintPresetImage replaces the surface with the preset's existing
// thumbnail, or the background when the preset has none.
func (s *Scratchpad) PaintPresetImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.surface, s.surface.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	if img != nil {
		s.paintFitted(img)
	}
}

// AllowPainting toggles whether Paint is accepted.
func (s *Scratchpad) AllowPainting(allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.painting = allow
}

func (s *Scratchpad) PaintingAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painting
}

// Paint composites a dab at the given offset.
func (s *Scratchpad) Paint(dab image.Image, at image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.painting {
		return ErrPaintingDisabled
	}
	b := dab.Bounds()
	draw.Draw(s.surface, b.Sub(b.Min).Add(at), dab, b.Min, draw.Over)
	return nil
}

// CutoutOverlay returns a copy of the cut-out area, origin at (0, 0).
func (s *Scratchpad) CutoutOverlay() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewNRGBA(image.Rect(0, 0, s.cutout.Dx(), s.cutout.Dy()))
	draw.Draw(out, out.Bounds(), s.surface, s.cutout.Min, draw.Src)
	return out
}

func (s *Scratchpad) paintFitted(img image.Image) {
	src := img.Bounds()
	if src.Empty() {
		return
	}
	dst := s.surface.Bounds()
	w, h := dst.Dx(), dst.Dy()
	if src.Dx()*dst.Dy() > src.Dy()*dst.Dx() {
		h = src.Dy() * dst.Dx() / src.Dx()
	} else {
		w = src.Dx() * dst.Dy() / src.Dy()
	}
	off := image.Pt((dst.Dx()-w)/2, (dst.Dy()-h)/2)
	target := image.Rect(0, 0, w, h).Add(dst.Min).Add(off)
	draw.CatmullRom.Scale(s.surface, target, img, src, draw.Over, nil)
}
