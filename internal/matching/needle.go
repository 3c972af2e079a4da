package matching

import (
	"fmt"
	"image"

	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/logger"
)

// FindOptions configures a needle search.
type FindOptions struct {
	// Threshold is the largest tolerated per-pixel distance.
	Threshold float64

	// Hint, when set, is a haystack origin probed before the full scan. It is
	// typically the offset the needle was cropped from. Out of range hints are
	// ignored.
	Hint *image.Point

	// Log receives diagnostics. Level 1 reports every new highest accepted
	// distance, level 2 every pixel comparison.
	Log *logger.Logger
}

// searcher carries the per-search diagnostic state.
type searcher struct {
	needle, haystack *imaging.Grid
	threshold        float64
	log              *logger.Logger
	highest          float64
}

// Find returns the first window of haystack that matches needle.
//
// Window origins are scanned in row-major order and every needle pixel is
// compared against the haystack pixel under it; a window is abandoned at its
// first mismatching pixel. Only the first matching origin is reported.
//
// Special cases:
//   - an all-transparent needle matches trivially: Find returns the null
//     Region with found set, which prints as "0,0+0x0"
//   - an all-transparent haystack never matches
//   - a needle wider or taller than the haystack returns an error wrapping
//     imaging.ErrBadRectangle
//
// Not finding the needle is a normal outcome: found is false and err is nil.
func Find(needle, haystack *imaging.Grid, opts FindOptions) (match imaging.Region, found bool, err error) {
	if needle.AllTransparent() {
		return imaging.Region{}, true, nil
	}

	nw, nh := needle.Width(), needle.Height()
	hw, hh := haystack.Width(), haystack.Height()
	if nw > hw || nh > hh {
		return imaging.Region{}, false, fmt.Errorf("%w: needle %dx%d larger than haystack %dx%d",
			imaging.ErrBadRectangle, nw, nh, hw, hh)
	}

	if haystack.AllTransparent() {
		opts.Log.Debugf(1, "Haystack is fully transparent")
		return imaging.Region{}, false, nil
	}

	s := &searcher{
		needle:    needle,
		haystack:  haystack,
		threshold: opts.Threshold,
		log:       opts.Log,
	}

	if h := opts.Hint; h != nil && h.X >= 0 && h.Y >= 0 && h.X <= hw-nw && h.Y <= hh-nh {
		if s.matchAt(h.X, h.Y) {
			return s.region(h.X, h.Y), true, nil
		}
		opts.Log.Debugf(1, "No match at hint %d,%d, scanning", h.X, h.Y)
	}

	for y := 0; y <= hh-nh; y++ {
		for x := 0; x <= hw-nw; x++ {
			if s.matchAt(x, y) {
				return s.region(x, y), true, nil
			}
		}
	}

	opts.Log.Debugf(1, "Couldn't find area")
	return imaging.Region{}, false, nil
}

// matchAt compares the whole needle against the haystack window at (x, y).
func (s *searcher) matchAt(x, y int) bool {
	for yy := 0; yy < s.needle.Height(); yy++ {
		for xx := 0; xx < s.needle.Width(); xx++ {
			if !s.compare(xx, yy, x+xx, y+yy) {
				return false
			}
		}
	}
	return true
}

// compare matches one needle pixel against one haystack pixel and records
// diagnostics.
func (s *searcher) compare(nx, ny, hx, hy int) bool {
	n := s.needle.At(nx, ny)
	h := s.haystack.At(hx, hy)
	d := imaging.Distance(n, h)

	if s.log.V(2) {
		s.log.Printf("%s to %s => %f (%f) at %d,%d (%d,%d)", n, h, d, s.threshold, nx, ny, hx, hy)
	}

	ok := d <= s.threshold
	if ok && d > s.highest && s.log.V(1) {
		s.log.Printf("Allowed %f distance for threshold %f at %d,%d (%d,%d) (%s vs %s)",
			d, s.threshold, nx, ny, hx, hy, n, h)
		s.highest = d
	}
	return ok
}

func (s *searcher) region(x, y int) imaging.Region {
	return imaging.Region{
		Rect: image.Rect(x, y, x+s.needle.Width(), y+s.needle.Height()),
		Grid: s.haystack,
	}
}
