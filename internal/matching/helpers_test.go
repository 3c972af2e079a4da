package matching

import (
	"image"
	"testing"

	"github.com/ironsheep/img-diff/internal/imaging"
)

var (
	white       = imaging.Color{R: 255, G: 255, B: 255, A: 255}
	red         = imaging.Color{R: 255, G: 0, B: 0, A: 255}
	blue        = imaging.Color{R: 0, G: 0, B: 255, A: 255}
	transparent = imaging.Color{}
)

// solidGrid builds a w x h grid filled with c.
func solidGrid(t *testing.T, w, h int, c imaging.Color) *imaging.Grid {
	t.Helper()
	return paintGrid(t, w, h, func(x, y int) imaging.Color { return c })
}

// paintGrid builds a w x h grid whose pixels come from fn.
func paintGrid(t *testing.T, w, h int, fn func(x, y int) imaging.Color) *imaging.Grid {
	t.Helper()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fn(x, y)
			i := (y*w + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	g, err := imaging.NewGrid(w, h, pix)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

// patternGrid builds a grid where every pixel is distinct from its
// neighbors, so a crop matches in exactly one place.
func patternGrid(t *testing.T, w, h int) *imaging.Grid {
	t.Helper()
	return paintGrid(t, w, h, func(x, y int) imaging.Color {
		return imaging.Color{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x*3 + y*5), A: 255}
	})
}

// crop copies rect out of g.
func crop(t *testing.T, g *imaging.Grid, rect image.Rectangle) *imaging.Grid {
	t.Helper()
	sub, err := g.Sub(rect)
	if err != nil {
		t.Fatalf("Sub(%v) failed: %v", rect, err)
	}
	return sub
}

// area sums the A-side area of pairs.
func area(pairs []imaging.MatchPair) int {
	total := 0
	for _, p := range pairs {
		total += p.A.Width() * p.A.Height()
	}
	return total
}

// assertDisjoint fails if any two A-side rectangles overlap.
func assertDisjoint(t *testing.T, pairs []imaging.MatchPair) {
	t.Helper()
	for i := range pairs {
		for j := i + 1; j < len(pairs); j++ {
			if pairs[i].A.Rect.Overlaps(pairs[j].A.Rect) {
				t.Errorf("pairs %s and %s overlap", pairs[i], pairs[j])
			}
		}
	}
}
