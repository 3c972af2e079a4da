package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/matching"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_find").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debugf(1, "Tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads grids through the server's loader, closing them when done
//  4. Calls the appropriate imaging/matching function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Matching
	case "image_find":
		return s.handleImageFind(args)
	case "image_match_regions":
		return s.handleImageMatchRegions(args)
	case "image_compare_regions":
		return s.handleImageCompareRegions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// thresholdArgs is shared by the matching tools. ThresholdPercent, when
// given, takes precedence over the raw Threshold.
type thresholdArgs struct {
	Threshold        float64  `json:"threshold"`
	ThresholdPercent *float64 `json:"threshold_percent"`
}

func (a thresholdArgs) value() (float64, error) {
	t := a.Threshold
	if a.ThresholdPercent != nil {
		t = imaging.PercentThreshold(*a.ThresholdPercent)
	}
	if t < 0 {
		return 0, errors.New("threshold must not be negative")
	}
	return t, nil
}

// loadPair loads two grids, closing the first if the second fails.
func (s *Server) loadPair(first, second string) (*imaging.Grid, *imaging.Grid, error) {
	a, err := s.loader.Load(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.loader.Load(second)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, b, nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.loader, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	g, err := s.loader.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return imaging.SampleColor(g, a.X, a.Y)
}

// === Matching Handlers ===

type imageFindArgs struct {
	Needle   string `json:"needle"`
	Haystack string `json:"haystack"`
	thresholdArgs
	HintX *int `json:"hint_x"`
	HintY *int `json:"hint_y"`
}

// FindResult is the outcome of the image_find tool.
type FindResult struct {
	Found bool `json:"found"`

	// Region is the match in x,y+wxh form; "0,0+0x0" for a fully
	// transparent needle.
	Region string `json:"region,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageFind(args json.RawMessage) (interface{}, error) {
	var a imageFindArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold, err := a.value()
	if err != nil {
		return nil, err
	}
	if (a.HintX == nil) != (a.HintY == nil) {
		return nil, errors.New("hint_x and hint_y must be given together")
	}

	needle, err := s.loader.Load(a.Needle)
	if err != nil {
		return nil, fmt.Errorf("failed to decode needle: %w", err)
	}
	defer needle.Close()

	if needle.AllTransparent() {
		return &FindResult{Found: true, Region: imaging.Region{}.String()}, nil
	}

	haystack, err := s.loader.Load(a.Haystack)
	if err != nil {
		return nil, fmt.Errorf("failed to decode haystack: %w", err)
	}
	defer haystack.Close()

	opts := matching.FindOptions{Threshold: threshold, Log: s.log}
	if a.HintX != nil {
		opts.Hint = &image.Point{X: *a.HintX, Y: *a.HintY}
	}

	match, found, err := matching.Find(needle, haystack, opts)
	if err != nil {
		return nil, err
	}
	if !found {
		return &FindResult{}, nil
	}
	return &FindResult{
		Found:  true,
		Region: match.String(),
		X:      match.Rect.Min.X,
		Y:      match.Rect.Min.Y,
		Width:  match.Width(),
		Height: match.Height(),
	}, nil
}

type imageMatchRegionsArgs struct {
	ImageA string `json:"image_a"`
	ImageB string `json:"image_b"`
	thresholdArgs
	MinSize int  `json:"min_size"`
	Range   int  `json:"range"`
	Overlay bool `json:"overlay"`
}

// MatchedRegion is one merged match pair.
type MatchedRegion struct {
	A string `json:"a"`
	B string `json:"b"`
}

// MatchRegionsResult is the outcome of the image_match_regions tool.
type MatchRegionsResult struct {
	Equivalent    bool                   `json:"equivalent"`
	Levels        int                    `json:"levels"`
	Matches       []MatchedRegion        `json:"matches"`
	Unmatched     []string               `json:"unmatched"`
	MatchedPixels int                    `json:"matched_pixels"`
	TotalPixels   int                    `json:"total_pixels"`
	Overlay       *imaging.OverlayResult `json:"overlay,omitempty"`
}

func (s *Server) handleImageMatchRegions(args json.RawMessage) (interface{}, error) {
	var a imageMatchRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold, err := a.value()
	if err != nil {
		return nil, err
	}
	if a.MinSize == 0 {
		a.MinSize = 1
	}
	if a.MinSize < 0 || a.Range < 0 {
		return nil, errors.New("min_size and range must not be negative")
	}

	ga, gb, err := s.loadPair(a.ImageA, a.ImageB)
	if err != nil {
		return nil, err
	}
	defer ga.Close()
	defer gb.Close()

	res, err := matching.MatchChunks(ga, gb, matching.ChunkOptions{
		Threshold: threshold,
		MinSize:   a.MinSize,
		Range:     a.Range,
		Log:       s.log,
	})
	if err != nil {
		return nil, err
	}

	merged := matching.Merge(res.Matches)
	out := &MatchRegionsResult{
		Equivalent:  res.Equivalent(),
		Levels:      res.Levels,
		Matches:     make([]MatchedRegion, len(merged)),
		Unmatched:   make([]string, len(res.Unmatched)),
		TotalPixels: ga.Width() * ga.Height(),
	}
	for i, p := range merged {
		out.Matches[i] = MatchedRegion{A: p.A.String(), B: p.B.String()}
		out.MatchedPixels += p.A.Width() * p.A.Height()
	}
	for i, r := range res.Unmatched {
		out.Unmatched[i] = imaging.FormatRect(r)
	}

	if a.Overlay {
		out.Overlay, err = imaging.EncodeOverlay(imaging.DiffOverlay(ga, merged, res.Unmatched))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type imageCompareRegionsArgs struct {
	ImageA string `json:"image_a"`
	ImageB string `json:"image_b"`
	thresholdArgs
}

func (s *Server) handleImageCompareRegions(args json.RawMessage) (interface{}, error) {
	var a imageCompareRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	threshold, err := a.value()
	if err != nil {
		return nil, err
	}

	ga, gb, err := s.loadPair(a.ImageA, a.ImageB)
	if err != nil {
		return nil, err
	}
	defer ga.Close()
	defer gb.Close()

	return imaging.CompareRegions(imaging.WholeRegion(ga), imaging.WholeRegion(gb), threshold)
}
