package matching

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/logger"
)

// ErrSizeMismatch is returned when chunk matching is asked to compare grids
// of different dimensions.
var ErrSizeMismatch = errors.New("image sizes differ")

// ChunkOptions configures MatchChunks.
type ChunkOptions struct {
	// Threshold is the largest tolerated per-pixel distance.
	Threshold float64

	// MinSize is the smallest cell width or height worth comparing.
	// Values below 1 are treated as 1.
	MinSize int

	// Range is the Chebyshev neighborhood, in cells, searched in the second
	// grid around each cell's own position. 0 compares only the cell at the
	// same index.
	Range int

	Log *logger.Logger
}

// ChunkResult is the outcome of MatchChunks.
type ChunkResult struct {
	// Matches holds one pair per matched cell, each at the granularity of
	// the level it was found on.
	Matches []imaging.MatchPair

	// Unmatched covers the area of the first grid that no match claimed,
	// as row-merged rectangles sorted top to bottom, left to right.
	Unmatched []image.Rectangle

	// Levels is the number of subdivision levels that were examined.
	Levels int
}

// Equivalent reports whether every pixel of the first grid was matched.
func (r *ChunkResult) Equivalent() bool {
	return len(r.Unmatched) == 0
}

// MatchChunks finds the equivalent regions of two equally sized grids.
//
// The grids are split into count x count cells for count = 1, 2, 3, ...;
// cells are W/count by H/count pixels and the last row and column absorb the
// remainder. Every cell of a that does not overlap an already matched area is
// compared with the cell at the same index in b and then with the cells of
// b within Range, nearest first. The first match is recorded and its area in
// a is marked used, so finer levels skip it.
//
// Refinement stops for the whole image at the first level whose cell width
// or height falls below MinSize, or as soon as all of a is matched.
func MatchChunks(a, b *imaging.Grid, opts ChunkOptions) (*ChunkResult, error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrSizeMismatch, a.Width(), a.Height(), b.Width(), b.Height())
	}

	minSize := opts.MinSize
	if minSize < 1 {
		minSize = 1
	}
	offsets := neighborOffsets(opts.Range)

	w, h := a.Width(), a.Height()
	used := newMask(w, h)
	res := &ChunkResult{}

	for count := 1; !used.full(); count++ {
		if w/count < minSize || h/count < minSize {
			break
		}
		res.Levels++
		found := 0

		for row := 0; row < count; row++ {
			for col := 0; col < count; col++ {
				rectA := cellRect(w, h, count, col, row)
				if used.overlaps(rectA) {
					continue
				}
				regionA := imaging.Region{Rect: rectA, Grid: a}

				for _, off := range offsets {
					c, r := col+off.X, row+off.Y
					if c < 0 || r < 0 || c >= count || r >= count {
						continue
					}
					regionB := imaging.Region{Rect: cellRect(w, h, count, c, r), Grid: b}
					if !regionA.Matches(regionB, opts.Threshold) {
						continue
					}
					res.Matches = append(res.Matches, imaging.MatchPair{A: regionA, B: regionB})
					used.mark(rectA)
					found++
					break
				}
			}
		}

		opts.Log.Debugf(1, "Level %d: %dx%d cells of %dx%d, %d matched",
			count, count, count, w/count, h/count, found)
	}

	res.Unmatched = used.unmatched()
	return res, nil
}

// cellRect returns the rectangle of cell (col, row) in a count x count
// partition of a w x h image.
func cellRect(w, h, count, col, row int) image.Rectangle {
	cw, ch := w/count, h/count
	x0, y0 := col*cw, row*ch
	x1, y1 := x0+cw, y0+ch
	if col == count-1 {
		x1 = w
	}
	if row == count-1 {
		y1 = h
	}
	return image.Rect(x0, y0, x1, y1)
}

// neighborOffsets lists the cell offsets within Chebyshev distance rng,
// ordered by distance, then dy, then dx. The first entry is always (0,0).
func neighborOffsets(rng int) []image.Point {
	if rng < 0 {
		rng = 0
	}
	offsets := make([]image.Point, 0, (2*rng+1)*(2*rng+1))
	for d := 0; d <= rng; d++ {
		for dy := -d; dy <= d; dy++ {
			for dx := -d; dx <= d; dx++ {
				if abs(dx) == d || abs(dy) == d {
					offsets = append(offsets, image.Pt(dx, dy))
				}
			}
		}
	}
	return offsets
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// mask tracks which pixels of the first grid are covered by a match.
type mask struct {
	w, h      int
	used      []bool
	remaining int
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, used: make([]bool, w*h), remaining: w * h}
}

func (m *mask) full() bool {
	return m.remaining == 0
}

func (m *mask) overlaps(r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.used[y*m.w:]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] {
				return true
			}
		}
	}
	return false
}

func (m *mask) mark(r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.used[y*m.w:]
		for x := r.Min.X; x < r.Max.X; x++ {
			if !row[x] {
				row[x] = true
				m.remaining--
			}
		}
	}
}

// unmatched returns the uncovered area as rectangles. Horizontal runs of
// uncovered pixels are extended downwards while the next row has a run with
// exactly the same span.
func (m *mask) unmatched() []image.Rectangle {
	var out []image.Rectangle
	open := make(map[[2]int]image.Rectangle)

	for y := 0; y < m.h; y++ {
		next := make(map[[2]int]image.Rectangle)
		row := m.used[y*m.w : (y+1)*m.w]
		for x := 0; x < m.w; {
			if row[x] {
				x++
				continue
			}
			start := x
			for x < m.w && !row[x] {
				x++
			}
			key := [2]int{start, x}
			if r, ok := open[key]; ok {
				r.Max.Y = y + 1
				next[key] = r
				delete(open, key)
			} else {
				next[key] = image.Rect(start, y, x, y+1)
			}
		}
		for _, r := range open {
			out = append(out, r)
		}
		open = next
	}
	for _, r := range open {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Min.Y != out[j].Min.Y {
			return out[i].Min.Y < out[j].Min.Y
		}
		return out[i].Min.X < out[j].Min.X
	})
	return out
}
