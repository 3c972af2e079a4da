package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

const pathDescription = "Absolute path to the image file, optionally followed by :x,y+wxh to select a sub-rectangle"

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// thresholdProperties returns the schema entries shared by the matching tools.
func thresholdProperties() map[string]interface{} {
	return map[string]interface{}{
		"threshold": map[string]interface{}{
			"type":        "number",
			"description": "Largest tolerated per-pixel color distance in raw channel units (0 = exact, max ~441.7). Default 0",
			"default":     0,
			"minimum":     0,
		},
		"threshold_percent": map[string]interface{}{
			"type":        "number",
			"description": "Threshold as a percentage of the 0-256 channel range; overrides threshold when given",
			"minimum":     0,
		},
	}
}

func withThreshold(props map[string]interface{}) map[string]interface{} {
	for k, v := range thresholdProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether every pixel is fully transparent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(pathDescription),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a specific pixel coordinate. Returns hex, RGBA and HSL values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(pathDescription),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Matching
		{
			Name:        "image_find",
			Description: "Find the first position, in row-major order, where the needle image occurs in the haystack image within the color threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withThreshold(map[string]interface{}{
					"needle":   pathProperty("Image to search for. " + pathDescription),
					"haystack": pathProperty("Image to search in. " + pathDescription),
					"hint_x": map[string]interface{}{
						"type":        "integer",
						"description": "Optional X of a position to try before scanning",
					},
					"hint_y": map[string]interface{}{
						"type":        "integer",
						"description": "Optional Y of a position to try before scanning",
					},
				}),
				"required": []string{"needle", "haystack"},
			},
		},
		{
			Name:        "image_match_regions",
			Description: "Compare two equally sized images region by region. Returns the merged pairs of equivalent regions, the unmatched area of the first image and optionally a base64 PNG overlay.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withThreshold(map[string]interface{}{
					"image_a": pathProperty("First image. " + pathDescription),
					"image_b": pathProperty("Second image. " + pathDescription),
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest chunk width or height to compare. Default 1",
						"default":     1,
						"minimum":     1,
					},
					"range": map[string]interface{}{
						"type":        "integer",
						"description": "Neighbor range in cells searched in the second image. Default 0",
						"default":     0,
						"minimum":     0,
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a PNG overlay of the comparison. Default false",
						"default":     false,
					},
				}),
				"required": []string{"image_a", "image_b"},
			},
		},
		{
			Name:        "image_compare_regions",
			Description: "Compare two images (or sub-rectangles) pixel by pixel and return similarity, differing pixel count and distance statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withThreshold(map[string]interface{}{
					"image_a": pathProperty("First image. " + pathDescription),
					"image_b": pathProperty("Second image. " + pathDescription),
				}),
				"required": []string{"image_a", "image_b"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
