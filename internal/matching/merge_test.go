package matching

import (
	"image"
	"reflect"
	"testing"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// pair builds a match pair of w x h regions at (ax, ay) and (bx, by).
func pair(ax, ay, bx, by, w, h int) imaging.MatchPair {
	return imaging.MatchPair{
		A: imaging.Region{Rect: image.Rect(ax, ay, ax+w, ay+h)},
		B: imaging.Region{Rect: image.Rect(bx, by, bx+w, by+h)},
	}
}

func pairStrings(pairs []imaging.MatchPair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.String())
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		input []imaging.MatchPair
		want  []string
	}{
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
		{
			name:  "single",
			input: []imaging.MatchPair{pair(1, 2, 3, 4, 5, 6)},
			want:  []string{"1,2+5x6 3,4+5x6"},
		},
		{
			name:  "horizontal neighbors",
			input: []imaging.MatchPair{pair(0, 0, 0, 0, 2, 2), pair(2, 0, 2, 0, 2, 2)},
			want:  []string{"0,0+4x2 0,0+4x2"},
		},
		{
			name:  "vertical neighbors",
			input: []imaging.MatchPair{pair(0, 2, 5, 7, 3, 2), pair(0, 0, 5, 5, 3, 2)},
			want:  []string{"0,0+3x4 5,5+3x4"},
		},
		{
			name: "quad of cells",
			input: []imaging.MatchPair{
				pair(1, 1, 1, 1, 1, 1),
				pair(0, 1, 0, 1, 1, 1),
				pair(1, 0, 1, 0, 1, 1),
				pair(0, 0, 0, 0, 1, 1),
			},
			want: []string{"0,0+2x2 0,0+2x2"},
		},
		{
			name:  "adjacent in A only",
			input: []imaging.MatchPair{pair(0, 0, 4, 0, 2, 2), pair(2, 0, 0, 0, 2, 2)},
			want:  []string{"0,0+2x2 4,0+2x2", "2,0+2x2 0,0+2x2"},
		},
		{
			name:  "different heights",
			input: []imaging.MatchPair{pair(0, 0, 0, 0, 2, 2), pair(2, 0, 2, 0, 2, 3)},
			want:  []string{"0,0+2x2 0,0+2x2", "2,0+2x3 2,0+2x3"},
		},
		{
			name:  "gap between cells",
			input: []imaging.MatchPair{pair(0, 0, 0, 0, 2, 2), pair(3, 0, 3, 0, 2, 2)},
			want:  []string{"0,0+2x2 0,0+2x2", "3,0+2x2 3,0+2x2"},
		},
		{
			name: "L shape keeps two rectangles",
			input: []imaging.MatchPair{
				pair(0, 0, 0, 0, 1, 1),
				pair(1, 0, 1, 0, 1, 1),
				pair(0, 1, 0, 1, 1, 1),
			},
			want: []string{"0,0+2x1 0,0+2x1", "0,1+1x1 0,1+1x1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pairStrings(Merge(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge:\n got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	input := []imaging.MatchPair{pair(0, 0, 0, 0, 2, 2), pair(2, 0, 2, 0, 2, 2)}
	before := pairStrings(input)

	Merge(input)

	if got := pairStrings(input); !reflect.DeepEqual(got, before) {
		t.Errorf("input changed: got %v, want %v", got, before)
	}
}

func TestMerge_IdempotentAndOrderIndependent(t *testing.T) {
	a := solidGrid(t, 8, 8, white)
	b := paintGrid(t, 8, 8, func(x, y int) imaging.Color {
		if x == 3 && y == 5 {
			return red
		}
		return white
	})
	res, err := MatchChunks(a, b, ChunkOptions{MinSize: 1})
	if err != nil {
		t.Fatalf("MatchChunks failed: %v", err)
	}

	once := Merge(res.Matches)
	twice := Merge(once)
	if !reflect.DeepEqual(pairStrings(once), pairStrings(twice)) {
		t.Errorf("Merge is not idempotent:\n once %v\ntwice %v", pairStrings(once), pairStrings(twice))
	}

	reversed := make([]imaging.MatchPair, len(res.Matches))
	for i, p := range res.Matches {
		reversed[len(reversed)-1-i] = p
	}
	if got := pairStrings(Merge(reversed)); !reflect.DeepEqual(got, pairStrings(once)) {
		t.Errorf("Merge depends on input order:\n got %v\nwant %v", got, pairStrings(once))
	}

	if got := area(once); got != 63 {
		t.Errorf("merged area: got %d, want 63", got)
	}
	assertDisjoint(t, once)
	if len(once) >= len(res.Matches) {
		t.Errorf("expected fewer merged pairs than raw matches, got %d from %d", len(once), len(res.Matches))
	}
}

func TestMerge_SelfMatchIsWholeImage(t *testing.T) {
	g := patternGrid(t, 6, 6)

	// Force a fine partition by matching cells one by one.
	var pairs []imaging.MatchPair
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r := cellRect(6, 6, 3, col, row)
			pairs = append(pairs, imaging.MatchPair{
				A: imaging.Region{Rect: r, Grid: g},
				B: imaging.Region{Rect: r, Grid: g},
			})
		}
	}

	merged := Merge(pairs)
	if len(merged) != 1 {
		t.Fatalf("expected one pair, got %v", pairStrings(merged))
	}
	if got := merged[0].String(); got != "0,0+6x6 0,0+6x6" {
		t.Errorf("merged: got %q", got)
	}
	if merged[0].A.Grid != g {
		t.Error("merged region should keep its grid")
	}
}
