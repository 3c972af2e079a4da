package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
)

var (
	matchOutline  = color.RGBA{0, 200, 0, 255}
	mismatchTint  = color.RGBA{255, 0, 0, 255}
	mismatchAlpha = 0.6
)

// OverlayResult contains a rendered diff overlay.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// DiffOverlay renders the outcome of a region comparison on top of base.
//
// The base grid is desaturated so that annotations stand out. Unmatched
// rectangles are tinted red and every matched A-side rectangle gets a one
// pixel green outline.
func DiffOverlay(base *Grid, matches []MatchPair, unmatched []image.Rectangle) *image.RGBA {
	result := effect.Grayscale(base.Image())
	bounds := result.Bounds()

	for _, r := range unmatched {
		r = r.Intersect(bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				result.SetRGBA(x, y, blend(result.RGBAAt(x, y), mismatchTint, mismatchAlpha))
			}
		}
	}

	for _, m := range matches {
		r := m.A.Rect.Intersect(bounds)
		if r.Empty() {
			continue
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			result.SetRGBA(x, r.Min.Y, matchOutline)
			result.SetRGBA(x, r.Max.Y-1, matchOutline)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			result.SetRGBA(r.Min.X, y, matchOutline)
			result.SetRGBA(r.Max.X-1, y, matchOutline)
		}
	}

	return result
}

// blend mixes over into base with the given opacity, keeping base's alpha
// at full opacity so tinted areas stay visible on transparent inputs.
func blend(base, over color.RGBA, opacity float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-opacity) + float64(b)*opacity + 0.5)
	}
	return color.RGBA{
		R: mix(base.R, over.R),
		G: mix(base.G, over.G),
		B: mix(base.B, over.B),
		A: 255,
	}
}

// SaveOverlay writes img as a PNG file.
func SaveOverlay(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// EncodeOverlay returns img as a base64 PNG.
func EncodeOverlay(img image.Image) (*OverlayResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
