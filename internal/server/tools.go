package server

import "github.com/ironsheep/winelabel-mcp/internal/preprocess"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the label photo",
	}
}

func strategyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{preprocess.StrategySauvola, preprocess.StrategyMeanBias, preprocess.StrategyOtsu},
		"description": "Threshold strategy. Defaults to the configured strategy (sauvola unless changed)",
	}
}

func fallbackProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Use the low-cost mode: grayscale and mean-bias threshold only, no dewarp, stretch or CLAHE",
		"default":     false,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "label_info",
			Description: "Read a label photo and report its dimensions, format, the working size the pipeline will process it at, and its mean color and exposure.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "label_binarize",
			Description: "Run the label preprocessing pipeline (downscale, grayscale, cylindrical dewarp, contrast stretch, CLAHE, adaptive threshold) and return the black-and-white result as a base64-encoded image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{string(preprocess.FormatPNG), string(preprocess.FormatTIFF), string(preprocess.FormatBMP), string(preprocess.FormatPBM), string(preprocess.FormatPBMZstd)},
						"description": "Output encoding",
						"default":     string(preprocess.FormatPNG),
					},
					"strategy": strategyProperty(),
					"fallback": fallbackProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "label_ocr",
			Description: "Binarize a label photo and extract its text with Tesseract. Returns the text and each word with its confidence and bounding box in working-grid coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Drop words below this confidence (0-100). Defaults to the configured cutoff",
					},
					"strategy": strategyProperty(),
					"fallback": fallbackProperty(),
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional rectangle of the binarized grid to recognize, x2/y2 exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report whether the OCR engine is available, its version and its installed languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
