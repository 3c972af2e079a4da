package matching

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/logger"
)

func TestFind_RecoloredBlock(t *testing.T) {
	haystack := paintGrid(t, 4, 4, func(x, y int) imaging.Color {
		if x >= 1 && x < 3 && y >= 2 && y < 4 {
			return red
		}
		return white
	})
	needle := solidGrid(t, 2, 2, red)

	match, found, err := Find(needle, haystack, FindOptions{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !found {
		t.Fatal("Find did not find the recolored block")
	}
	if match.Rect != image.Rect(1, 2, 3, 4) {
		t.Errorf("match: got %s, want 1,2+2x2", match)
	}
	if match.Grid != haystack {
		t.Error("match should reference the haystack grid")
	}
}

func TestFind_CropFromHaystack(t *testing.T) {
	haystack := patternGrid(t, 20, 15)

	tests := []image.Rectangle{
		image.Rect(0, 0, 4, 3),
		image.Rect(5, 7, 9, 10),
		image.Rect(16, 12, 20, 15),
		image.Rect(0, 0, 20, 15),
		image.Rect(19, 14, 20, 15),
	}

	for _, rect := range tests {
		t.Run(imaging.FormatRect(rect), func(t *testing.T) {
			needle := crop(t, haystack, rect)

			match, found, err := Find(needle, haystack, FindOptions{Threshold: 0})
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if !found {
				t.Fatal("Find did not find an exact crop")
			}
			if match.Rect != rect {
				t.Errorf("match: got %s, want %s", match, imaging.FormatRect(rect))
			}
		})
	}
}

func TestFind_NotFound(t *testing.T) {
	haystack := solidGrid(t, 10, 10, white)
	needle := solidGrid(t, 3, 3, red)

	match, found, err := Find(needle, haystack, FindOptions{})
	if err != nil {
		t.Fatalf("not found should not be an error, got: %v", err)
	}
	if found {
		t.Errorf("unexpected match at %s", match)
	}
	if !match.IsNull() {
		t.Error("not found should return the null region")
	}
}

func TestFind_BadRectangle(t *testing.T) {
	haystack := solidGrid(t, 5, 5, white)

	tests := []struct {
		name string
		w, h int
	}{
		{"wider", 6, 2},
		{"taller", 2, 6},
		{"both", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			needle := solidGrid(t, tt.w, tt.h, white)
			_, found, err := Find(needle, haystack, FindOptions{})
			if !errors.Is(err, imaging.ErrBadRectangle) {
				t.Errorf("got %v, want ErrBadRectangle", err)
			}
			if found {
				t.Error("found should be false on error")
			}
		})
	}
}

func TestFind_TransparentNeedle(t *testing.T) {
	needle := solidGrid(t, 3, 3, transparent)

	haystacks := map[string]*imaging.Grid{
		"opaque":      solidGrid(t, 10, 10, blue),
		"transparent": solidGrid(t, 10, 10, transparent),
		"smaller":     solidGrid(t, 2, 2, white),
	}

	for name, haystack := range haystacks {
		t.Run(name, func(t *testing.T) {
			match, found, err := Find(needle, haystack, FindOptions{})
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if !found {
				t.Fatal("transparent needle should match trivially")
			}
			if !match.IsNull() || match.String() != "0,0+0x0" {
				t.Errorf("match: got %s, want the null region", match)
			}
		})
	}
}

func TestFind_TransparentHaystack(t *testing.T) {
	haystack := solidGrid(t, 10, 10, transparent)
	needle := solidGrid(t, 2, 2, transparent)
	needle2 := solidGrid(t, 2, 2, imaging.Color{A: 1})

	if _, found, _ := Find(needle2, haystack, FindOptions{Threshold: 255}); found {
		t.Error("an all-transparent haystack should never match an opaque needle")
	}
	// The needle check comes first
	if _, found, _ := Find(needle, haystack, FindOptions{}); !found {
		t.Error("a transparent needle should still match")
	}
}

func TestFind_RowMajorOrder(t *testing.T) {
	// Two red pixels: (5,0) comes first in row-major order, (0,3) in
	// column-major order.
	haystack := paintGrid(t, 8, 6, func(x, y int) imaging.Color {
		if (x == 5 && y == 0) || (x == 0 && y == 3) {
			return red
		}
		return white
	})
	needle := solidGrid(t, 1, 1, red)

	match, found, err := Find(needle, haystack, FindOptions{})
	if err != nil || !found {
		t.Fatalf("Find: found=%v err=%v", found, err)
	}
	if match.Rect.Min != image.Pt(5, 0) {
		t.Errorf("first match: got %s, want 5,0+1x1", match)
	}
}

func TestFind_Hint(t *testing.T) {
	haystack := paintGrid(t, 8, 6, func(x, y int) imaging.Color {
		if (x == 5 && y == 0) || (x == 0 && y == 3) {
			return red
		}
		return white
	})
	needle := solidGrid(t, 1, 1, red)

	tests := []struct {
		name string
		hint image.Point
		want image.Point
	}{
		{"hint hits second occurrence", image.Pt(0, 3), image.Pt(0, 3)},
		{"hint misses", image.Pt(1, 1), image.Pt(5, 0)},
		{"hint out of range", image.Pt(50, 50), image.Pt(5, 0)},
		{"negative hint", image.Pt(-1, 0), image.Pt(5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := tt.hint
			match, found, err := Find(needle, haystack, FindOptions{Hint: &hint})
			if err != nil || !found {
				t.Fatalf("Find: found=%v err=%v", found, err)
			}
			if match.Rect.Min != tt.want {
				t.Errorf("match: got %s, want origin %v", match, tt.want)
			}
		})
	}
}

func TestFind_ThresholdMonotonic(t *testing.T) {
	haystack := patternGrid(t, 12, 12)
	// Shift every channel of a crop by 3, 4 and 0: RGB distance exactly 5
	base := crop(t, haystack, image.Rect(4, 4, 8, 8))
	needle := paintGrid(t, 4, 4, func(x, y int) imaging.Color {
		c := base.At(x, y)
		return imaging.Color{R: c.R + 3, G: c.G + 4, B: c.B, A: c.A}
	})

	seen := false
	for _, threshold := range []float64{0, 1, 4.9, 5, 5.1, 20, 100, 500} {
		_, found, err := Find(needle, haystack, FindOptions{Threshold: threshold})
		if err != nil {
			t.Fatalf("Find(%v) failed: %v", threshold, err)
		}
		if seen && !found {
			t.Errorf("threshold %v lost a match found at a lower threshold", threshold)
		}
		if found {
			seen = true
		}
		if threshold < 5 && found {
			t.Errorf("threshold %v should be too strict", threshold)
		}
		if threshold >= 5 && !found {
			t.Errorf("threshold %v should accept distance 5", threshold)
		}
	}
}

func TestFind_AlphaDistance(t *testing.T) {
	haystack := solidGrid(t, 6, 6, imaging.Color{R: 10, G: 20, B: 30, A: 255})
	needle := solidGrid(t, 2, 2, imaging.Color{R: 10, G: 20, B: 30, A: 155})

	if _, found, _ := Find(needle, haystack, FindOptions{Threshold: 99}); found {
		t.Error("alpha difference of 100 should exceed threshold 99")
	}
	if _, found, _ := Find(needle, haystack, FindOptions{Threshold: 100}); !found {
		t.Error("alpha difference of 100 should be within threshold 100")
	}
}

func TestFind_VerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	haystack := solidGrid(t, 3, 3, white)
	needle := solidGrid(t, 1, 1, imaging.Color{R: 250, G: 255, B: 255, A: 255})

	_, found, err := Find(needle, haystack, FindOptions{Threshold: 10, Log: logger.New(&buf, 1)})
	if err != nil || !found {
		t.Fatalf("Find: found=%v err=%v", found, err)
	}
	if !strings.Contains(buf.String(), "Allowed 5.000000 distance") {
		t.Errorf("expected highest-distance diagnostic, got %q", buf.String())
	}
}
