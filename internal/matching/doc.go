// Package matching locates equivalent regions between two grids.
//
// Two independent searches are provided:
//
//   - Find slides a needle grid over a haystack grid and reports the first
//     window where every pixel is within the threshold.
//   - MatchChunks splits two equally sized grids into progressively finer
//     cells and pairs up cells that match, possibly at a slightly shifted
//     position. Merge then fuses adjacent pairs into larger rectangles.
//
// Both searches use imaging.Matches as their only pixel comparison, so a
// threshold of 0 means exact equality and larger thresholds are strictly
// more permissive.
//
// # Concurrency
//
// All functions run synchronously on the calling goroutine. Grids are only
// read, so several searches may share the same grids concurrently.
package matching
