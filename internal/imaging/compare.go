package imaging

import (
	"fmt"
	"math"
)

// Size is a width and height in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// CompareRegionsResult contains region comparison information
type CompareRegionsResult struct {
	SimilarityScore float64 `json:"similarity_score"`
	PixelsDifferent int     `json:"pixels_different"`
	TotalPixels     int     `json:"total_pixels"`
	SameSize        bool    `json:"same_size"`
	Region1Size     Size    `json:"region1_size"`
	Region2Size     Size    `json:"region2_size"`
	AverageDistance float64 `json:"average_distance"`
	MaxDistance     float64 `json:"max_distance"`
	Matches         bool    `json:"matches"`
}

// CompareRegions measures how far apart two regions are.
//
// Pixels are paired by their offset from each region's top-left corner over
// the overlapping width and height. A pixel pair counts as different when
// its Distance exceeds threshold. Matches is true only when the regions have
// the same size and no pixel pair differs, which is the same outcome as
// a.Matches(b, threshold) without stopping at the first mismatch.
func CompareRegions(a, b Region, threshold float64) (*CompareRegionsResult, error) {
	if a.IsNull() || b.IsNull() {
		return nil, fmt.Errorf("%w: cannot compare a null region", ErrBadRectangle)
	}

	w := min(a.Width(), b.Width())
	h := min(a.Height(), b.Height())

	total := w * h
	different := 0
	var sum, highest float64

	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			d := Distance(
				a.Grid.At(a.Rect.Min.X+dx, a.Rect.Min.Y+dy),
				b.Grid.At(b.Rect.Min.X+dx, b.Rect.Min.Y+dy),
			)
			sum += d
			if d > highest {
				highest = d
			}
			if d > threshold {
				different++
			}
		}
	}

	res := &CompareRegionsResult{
		PixelsDifferent: different,
		TotalPixels:     total,
		SameSize:        a.SameSize(b),
		Region1Size:     Size{W: a.Width(), H: a.Height()},
		Region2Size:     Size{W: b.Width(), H: b.Height()},
		MaxDistance:     math.Round(highest*100) / 100,
	}
	res.Matches = res.SameSize && different == 0
	if total > 0 {
		res.SimilarityScore = math.Round((1-float64(different)/float64(total))*1000) / 1000
		res.AverageDistance = math.Round(sum/float64(total)*100) / 100
	}
	return res, nil
}
