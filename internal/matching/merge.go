package matching

import (
	"image"
	"sort"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// Merge fuses aligned match pairs into the fewest, largest rectangles that
// describe the same matched area.
//
// Two pairs are aligned when their A regions share a full edge (same y and
// height and horizontally adjacent, or same x and width and vertically
// adjacent) and their B regions share the same edge in the same direction.
// Aligned pairs are replaced by one pair whose A and B regions are the
// bounding rectangles of the originals. Fusion restarts after every merge and
// runs until no aligned pair remains.
//
// The input is not modified. Output is sorted by A origin, then B origin, so
// the result does not depend on input order and Merge(Merge(x)) equals
// Merge(x).
func Merge(pairs []imaging.MatchPair) []imaging.MatchPair {
	out := make([]imaging.MatchPair, len(pairs))
	copy(out, pairs)
	sortPairs(out)

	for {
		i, j, fused, ok := findAligned(out)
		if !ok {
			return out
		}
		out[i] = fused
		out = append(out[:j], out[j+1:]...)
		sortPairs(out)
	}
}

// findAligned returns the first aligned pair (i, j) in scan order together
// with their fusion.
func findAligned(pairs []imaging.MatchPair) (int, int, imaging.MatchPair, bool) {
	for i := range pairs {
		for j := range pairs {
			if i == j {
				continue
			}
			if fused, ok := fuse(pairs[i], pairs[j]); ok {
				return i, j, fused, true
			}
		}
	}
	return 0, 0, imaging.MatchPair{}, false
}

// fuse merges q into p when q lies directly right of or directly below p on
// both sides.
func fuse(p, q imaging.MatchPair) (imaging.MatchPair, bool) {
	horizontal := rightOf(p.A.Rect, q.A.Rect) && rightOf(p.B.Rect, q.B.Rect)
	vertical := below(p.A.Rect, q.A.Rect) && below(p.B.Rect, q.B.Rect)
	if !horizontal && !vertical {
		return imaging.MatchPair{}, false
	}
	return imaging.MatchPair{
		A: imaging.Region{Rect: p.A.Rect.Union(q.A.Rect), Grid: p.A.Grid},
		B: imaging.Region{Rect: p.B.Rect.Union(q.B.Rect), Grid: p.B.Grid},
	}, true
}

// rightOf reports whether r starts where l ends horizontally with the same
// vertical extent.
func rightOf(l, r image.Rectangle) bool {
	return l.Max.X == r.Min.X && l.Min.Y == r.Min.Y && l.Max.Y == r.Max.Y
}

// below reports whether b starts where t ends vertically with the same
// horizontal extent.
func below(t, b image.Rectangle) bool {
	return t.Max.Y == b.Min.Y && t.Min.X == b.Min.X && t.Max.X == b.Max.X
}

func sortPairs(pairs []imaging.MatchPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if k, l := rectKey(a.A.Rect), rectKey(b.A.Rect); k != l {
			return lessKey(k, l)
		}
		return lessKey(rectKey(a.B.Rect), rectKey(b.B.Rect))
	})
}

func rectKey(r image.Rectangle) [4]int {
	return [4]int{r.Min.Y, r.Min.X, r.Max.Y, r.Max.X}
}

func lessKey(a, b [4]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
