// Package server implements the MCP (Model Context Protocol) server for img-diff.
//
// This package provides a JSON-RPC 2.0 server that exposes the image matchers
// through the MCP protocol, so that MCP clients can locate one image inside
// another or compare two screenshots region by region.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Dimensions, format and transparency of an image
//   - image_sample_color: Get color at pixel
//
// Matching:
//   - image_find: Locate a needle image inside a haystack image
//   - image_match_regions: Region equivalence of two equally sized images,
//     with an optional PNG overlay
//   - image_compare_regions: Pixel statistics for two images or sub-rectangles
//
// Every path argument accepts the sub-rectangle suffix path:x,y+wxh.
// Thresholds are given in raw distance units (threshold) or as a percentage
// of the channel range (threshold_percent).
//
// # Image Caching
//
// Decoded images are kept in memory by the server's imaging.Loader for the
// lifetime of the process. When IMG_DIFF_CACHE is set, grids are also
// written to and read back from binary cache files in that directory.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is started by the img-diff serve subcommand:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
