package imaging

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a single non-premultiplied RGBA sample with 8-bit channels.
//
// Color is a value type: two colors are equal when all four channels are
// equal. The alpha channel follows the usual convention:
//   - 0 = fully transparent
//   - 255 = fully opaque
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// ColorFromNRGBA converts any color.Color to an 8-bit non-premultiplied Color.
func ColorFromNRGBA(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Distance returns the distance between two colors.
//
// The distance is the Euclidean distance over the red, green and blue
// channels, raised to the absolute alpha difference when that is larger:
//
//	max(sqrt(dr² + dg² + db²), |da|)
//
// Distance(c, c) is exactly 0 for every color. The result is in raw channel
// units, so the largest possible value is 255*sqrt(3) ≈ 441.7.
func Distance(a, b Color) float64 {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	rgb := math.Sqrt(float64(dr*dr + dg*dg + db*db))

	da := int(a.A) - int(b.A)
	if da < 0 {
		da = -da
	}
	if alpha := float64(da); alpha > rgb {
		return alpha
	}
	return rgb
}

// Matches reports whether Distance(a, b) <= threshold. Threshold 0 means
// exact equality.
func Matches(a, b Color, threshold float64) bool {
	return Distance(a, b) <= threshold
}

// PercentThreshold converts a percentage of the 0-256 channel range to raw
// distance units.
func PercentThreshold(p float64) float64 {
	return p * 256 / 100
}

// colorful returns the RGB part of c as a go-colorful color.
func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// String renders the color as lowercase "rrggbbaa".
func (c Color) String() string {
	return fmt.Sprintf("%s%02x", c.colorful().Hex()[1:], c.A)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a sampled color in several representations.
type ColorResult struct {
	Hex          string   `json:"hex"`         // Hex format "#RRGGBB" (no alpha)
	HexWithAlpha string   `json:"hex_alpha"`   // Hex format "rrggbbaa"
	RGBA         Color    `json:"rgba"`        // RGBA components with alpha
	HSL          HSLColor `json:"hsl"`         // HSL representation
	Transparent  bool     `json:"transparent"` // True when alpha is 0
}

// SampleColor returns the color of grid g at (x, y).
//
// Coordinates are 0-based with origin at top-left. Coordinates outside the
// grid return an error wrapping ErrOutOfBounds.
func SampleColor(g *Grid, x, y int) (*ColorResult, error) {
	c, err := g.Color(x, y)
	if err != nil {
		return nil, err
	}

	h, s, l := c.colorful().Hsl()
	return &ColorResult{
		Hex:          strings.ToUpper(c.colorful().Hex()),
		HexWithAlpha: c.String(),
		RGBA:         c,
		HSL: HSLColor{
			H: int(h),
			S: int(s * 100),
			L: int(l * 100),
		},
		Transparent: c.A == 0,
	}, nil
}
