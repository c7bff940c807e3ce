// Package roi clamps regions of interest to frame bounds and prepares crops
// for recognition.
package roi

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/forPelevin/subextract/internal/types"
)

// Clamp fits r inside a frame of size w x h. The result is at least 1x1.
func Clamp(r types.Region, w, h int) types.Region {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := clampInt(r.X, 0, w-1)
	y := clampInt(r.Y, 0, h-1)
	cw := clampInt(r.Width, 1, w-x)
	ch := clampInt(r.Height, 1, h-y)
	return types.Region{X: x, Y: y, Width: cw, Height: ch}
}

// Crop returns the clamped region of img, or img itself when r is nil.
func Crop(img image.Image, r *types.Region) image.Image {
	if r == nil {
		return img
	}
	b := img.Bounds()
	c := Clamp(*r, b.Dx(), b.Dy())
	rect := c.Rect().Add(b.Min)

	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// Fit downscales img to maxWidth keeping the aspect ratio. Images already
// narrow enough, or maxWidth <= 0, are returned unchanged.
func Fit(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
