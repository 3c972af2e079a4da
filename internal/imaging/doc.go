// Package imaging provides the pixel model shared by the matchers: colors,
// grids, regions, image loading and diff overlays.
//
// Decoded images are converted once into a Grid, a flat non-premultiplied
// RGBA buffer that also remembers whether every pixel is fully transparent.
// All comparisons work on grids; image.Image only appears at the edges, when
// decoding a source file or rendering an overlay.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles are image.Rectangle values: Min is inclusive, Max exclusive
//   - On the command line a rectangle is written "x,y+wxh"
//
// # Color Distance
//
// Distance combines the Euclidean RGB distance with the alpha difference,
// taking whichever is larger. Two colors match when their distance is at
// most the threshold, so a threshold of 0 means exact equality.
//
// # Thread Safety
//
// Grids and regions are read-only after construction and may be shared
// between goroutines. The Loader is safe for concurrent use.
//
// # Error Handling
//
// Functions return errors wrapping the sentinels of this package:
//   - ErrOutOfBounds for pixel coordinates outside a grid
//   - ErrBadRectangle for empty or out-of-range rectangles
//   - ErrDecode for files that cannot be read or decoded
package imaging
