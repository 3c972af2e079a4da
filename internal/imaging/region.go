package imaging

import (
	"fmt"
	"image"
)

// Region is a rectangular view into a Grid.
//
// Rect is expressed in the grid's absolute coordinates and always lies within
// the grid bounds. Grid is a non-owning reference: the grid outlives every
// Region built on it and never refers back to its regions.
//
// The zero Region, with a nil Grid and an empty Rect, is the canonical
// "no match" value. NewRegion keeps both null states in lock-step.
type Region struct {
	Rect image.Rectangle
	Grid *Grid
}

// NewRegion returns the region of g covered by rect.
//
// rect must be contained within g's bounds; otherwise the error wraps
// ErrBadRectangle. A nil grid yields the null Region only for an empty rect.
func NewRegion(g *Grid, rect image.Rectangle) (Region, error) {
	if g == nil {
		if rect != (image.Rectangle{}) {
			return Region{}, fmt.Errorf("%w: %s without a grid", ErrBadRectangle, FormatRect(rect))
		}
		return Region{}, nil
	}
	if rect.Min.X < 0 || rect.Min.Y < 0 || rect.Max.X > g.Width() || rect.Max.Y > g.Height() ||
		rect.Max.X < rect.Min.X || rect.Max.Y < rect.Min.Y {
		return Region{}, fmt.Errorf("%w: %s not contained in %dx%d",
			ErrBadRectangle, FormatRect(rect), g.Width(), g.Height())
	}
	return Region{Rect: rect, Grid: g}, nil
}

// WholeRegion returns the region covering all of g.
func WholeRegion(g *Grid) Region {
	return Region{Rect: g.Bounds(), Grid: g}
}

// IsNull reports whether r is the null Region.
func (r Region) IsNull() bool {
	return r.Grid == nil
}

// Width returns the region width in pixels.
func (r Region) Width() int { return r.Rect.Dx() }

// Height returns the region height in pixels.
func (r Region) Height() int { return r.Rect.Dy() }

// SameSize reports whether r and other have identical width and height.
func (r Region) SameSize(other Region) bool {
	return r.Width() == other.Width() && r.Height() == other.Height()
}

// Matches reports whether every pixel of r matches the pixel at the same
// relative position in other. Regions of different sizes never match.
// The comparison stops at the first mismatching pixel.
func (r Region) Matches(other Region, threshold float64) bool {
	if !r.SameSize(other) || r.IsNull() || other.IsNull() {
		return false
	}
	w, h := r.Width(), r.Height()
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			a := r.Grid.At(r.Rect.Min.X+xx, r.Rect.Min.Y+yy)
			b := other.Grid.At(other.Rect.Min.X+xx, other.Rect.Min.Y+yy)
			if !Matches(a, b, threshold) {
				return false
			}
		}
	}
	return true
}

// String renders the region as "x,y+wxh".
func (r Region) String() string {
	return FormatRect(r.Rect)
}

// MatchPair links two equally sized regions, one in each compared grid.
type MatchPair struct {
	A Region
	B Region
}

// String renders the pair as "x,y+wxh x,y+wxh".
func (p MatchPair) String() string {
	return p.A.String() + " " + p.B.String()
}
