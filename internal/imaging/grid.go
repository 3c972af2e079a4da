package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	// ErrOutOfBounds is returned when a pixel coordinate lies outside a grid.
	ErrOutOfBounds = errors.New("coordinates outside image bounds")

	// ErrBadRectangle is returned when a rectangle does not fit where it is
	// used: a sub-rectangle outside its source, or a needle larger than its
	// haystack.
	ErrBadRectangle = errors.New("bad rectangle")

	// ErrDecode is returned when a source file cannot be read or decoded.
	ErrDecode = errors.New("failed to decode image")
)

// bytesPerPixel is the size of one RGBA sample in a grid buffer.
const bytesPerPixel = 4

// Grid is an immutable, row-major RGBA pixel buffer.
//
// The buffer holds width*height non-premultiplied samples in R, G, B, A byte
// order, the same layout as image.NRGBA with a stride of width*4. A Grid is
// either backed by memory it owns or by an external read-only mapping; in the
// mapped case Close must be called once the grid and every Region built on it
// are no longer needed.
//
// Grids are never modified after construction, so they are safe for
// concurrent reads.
type Grid struct {
	width, height  int
	pix            []byte
	allTransparent bool
	release        func() error
}

// NewGrid wraps an owned pixel buffer of width*height RGBA samples.
//
// The transparency flag is computed by scanning the buffer once.
func NewGrid(width, height int, pix []byte) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(pix) != width*height*bytesPerPixel {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d for %dx%d",
			len(pix), width*height*bytesPerPixel, width, height)
	}
	return &Grid{
		width:          width,
		height:         height,
		pix:            pix,
		allTransparent: scanTransparent(pix),
	}, nil
}

// NewMappedGrid builds a grid over an externally owned buffer such as a
// memory-mapped cache file. The transparency flag is taken as stored, and
// release is called exactly once by Close.
func NewMappedGrid(width, height int, pix []byte, allTransparent bool, release func() error) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(pix) != width*height*bytesPerPixel {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d for %dx%d",
			len(pix), width*height*bytesPerPixel, width, height)
	}
	return &Grid{
		width:          width,
		height:         height,
		pix:            pix,
		allTransparent: allTransparent,
		release:        release,
	}, nil
}

// FromImage converts a decoded raster into a grid.
//
// Every pixel is visited once to fill the buffer and compute the transparency
// flag. This is the only place decode output is copied into grid form.
func FromImage(img image.Image) *Grid {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	pix := make([]byte, w*h*bytesPerPixel)
	for y := 0; y < h; y++ {
		copy(pix[y*w*bytesPerPixel:(y+1)*w*bytesPerPixel], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*bytesPerPixel])
	}
	return &Grid{
		width:          w,
		height:         h,
		pix:            pix,
		allTransparent: scanTransparent(pix),
	}
}

// scanTransparent reports whether every alpha byte in pix is zero.
func scanTransparent(pix []byte) bool {
	for i := 3; i < len(pix); i += bytesPerPixel {
		if pix[i] != 0 {
			return false
		}
	}
	return true
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.height }

// AllTransparent reports whether every pixel has alpha 0.
func (g *Grid) AllTransparent() bool { return g.allTransparent }

// Bounds returns the grid rectangle, always anchored at (0,0).
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// Pix returns the raw RGBA buffer. Callers must not modify it.
func (g *Grid) Pix() []byte { return g.pix }

// Color returns the color at (x, y).
func (g *Grid) Color(x, y int) (Color, error) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return Color{}, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return g.At(x, y), nil
}

// At returns the color at (x, y) without bounds checking beyond the slice
// access itself. Hot loops that already validated their rectangle use it.
func (g *Grid) At(x, y int) Color {
	i := (y*g.width + x) * bytesPerPixel
	p := g.pix[i : i+bytesPerPixel : i+bytesPerPixel]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Sub copies rect into a new owned grid.
//
// The transparency flag is recomputed for rect only. rect must be non-empty
// and contained within the grid bounds; otherwise the error wraps
// ErrBadRectangle. A rect equal to the whole grid returns g itself.
func (g *Grid) Sub(rect image.Rectangle) (*Grid, error) {
	if rect.Empty() || !rect.In(g.Bounds()) {
		return nil, fmt.Errorf("%w: %s not contained in %dx%d",
			ErrBadRectangle, FormatRect(rect), g.width, g.height)
	}
	if rect == g.Bounds() {
		return g, nil
	}

	w, h := rect.Dx(), rect.Dy()
	pix := make([]byte, 0, w*h*bytesPerPixel)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		start := (y*g.width + rect.Min.X) * bytesPerPixel
		pix = append(pix, g.pix[start:start+w*bytesPerPixel]...)
	}
	return &Grid{
		width:          w,
		height:         h,
		pix:            pix,
		allTransparent: scanTransparent(pix),
	}, nil
}

// Image returns an image.NRGBA sharing the grid's pixels. The result must be
// treated as read-only.
func (g *Grid) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    g.pix,
		Stride: g.width * bytesPerPixel,
		Rect:   g.Bounds(),
	}
}

// Close releases the backing mapping, if any. It is safe to call more than
// once and is a no-op for owned grids.
func (g *Grid) Close() error {
	if g == nil || g.release == nil {
		return nil
	}
	release := g.release
	g.release = nil
	g.pix = nil
	return release()
}

// FormatRect renders r as "x,y+wxh", the notation used on the command line.
func FormatRect(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d+%dx%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}
