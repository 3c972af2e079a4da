package imaging

import (
	"fmt"
	"image"
	"regexp"
	"strconv"

	"github.com/disintegration/imaging"
)

// sourcePattern matches "path:x,y+wxh". The path part is greedy so paths
// containing colons still resolve to their last suffix.
var sourcePattern = regexp.MustCompile(`^(.*):([0-9]+),([0-9]+)\+([0-9]+)x([0-9]+)$`)

// Source is an image path with an optional crop rectangle.
type Source struct {
	// Path is the file to decode.
	Path string

	// Rect is the selected sub-rectangle. It is only meaningful when HasRect
	// is true.
	Rect image.Rectangle

	// HasRect reports whether the argument carried a ":x,y+wxh" suffix.
	HasRect bool
}

// ParseSource splits a command line image argument into path and crop.
//
// Accepted forms:
//   - "shot.png" selects the whole image
//   - "shot.png:10,20+30x40" selects the 30x40 rectangle at (10,20)
//
// A suffix with a zero width or height is rejected with ErrBadRectangle.
// Containment in the decoded image is checked later by Crop.
func ParseSource(arg string) (Source, error) {
	m := sourcePattern.FindStringSubmatch(arg)
	if m == nil {
		return Source{Path: arg}, nil
	}

	nums := make([]int, 4)
	for i := range nums {
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return Source{}, fmt.Errorf("invalid rectangle in %q: %w", arg, err)
		}
		nums[i] = n
	}
	if nums[2] == 0 || nums[3] == 0 {
		return Source{}, fmt.Errorf("%w: empty rectangle in %q", ErrBadRectangle, arg)
	}

	return Source{
		Path:    m[1],
		Rect:    image.Rect(nums[0], nums[1], nums[0]+nums[2], nums[1]+nums[3]),
		HasRect: true,
	}, nil
}

// String renders the source back into command line form.
func (s Source) String() string {
	if !s.HasRect {
		return s.Path
	}
	return s.Path + ":" + FormatRect(s.Rect)
}

// Crop extracts rect from a decoded image before it is turned into a grid.
//
// rect is relative to the image's top-left corner and must be contained in
// the image; otherwise the error wraps ErrBadRectangle.
func Crop(img image.Image, rect image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	local := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	if rect.Empty() || !rect.In(local) {
		return nil, fmt.Errorf("%w: crop region %s outside image bounds %dx%d",
			ErrBadRectangle, FormatRect(rect), bounds.Dx(), bounds.Dy())
	}
	if rect == local {
		return img, nil
	}
	return imaging.Crop(img, rect.Add(bounds.Min)), nil
}
