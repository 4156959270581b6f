package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/winelabel-mcp/internal/ocr"
	"github.com/ironsheep/winelabel-mcp/internal/photo"
	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// errNoRecognizer is returned by label_ocr when the server has no OCR engine.
var errNoRecognizer = errors.New("no OCR engine configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "label_binarize").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage(`{}`)
	}

	log := s.log.WithField("tool", params.Name)
	start := time.Now()

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.WithField("duration", time.Since(start)).Info("tool complete")

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "label_info":
		return s.handleLabelInfo(args)
	case "label_binarize":
		return s.handleLabelBinarize(ctx, args)
	case "label_ocr":
		return s.handleLabelOCR(ctx, args)
	case "ocr_info":
		return s.handleOCRInfo()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodeArgs(args json.RawMessage, v interface{ path() string }) error {
	if err := json.Unmarshal(args, v); err != nil {
		return err
	}
	if v.path() == "" {
		return errors.New("path is required")
	}
	return nil
}

func (a *pathArgs) path() string { return a.Path }

// pipeline builds a Pipeline for one request. fallback swaps in the low-cost
// mode at the configured working size; a non-empty strategy replaces the
// threshold step.
func (s *Server) pipeline(fallback bool, strategy string) (*preprocess.Pipeline, error) {
	cfg := s.preprocess
	if fallback {
		fb := preprocess.FallbackConfig()
		fb.MaxWorkingDimension = cfg.MaxWorkingDimension
		cfg = fb
	}
	if strategy != "" {
		st, err := preprocess.ParseStrategy(strategy, s.params)
		if err != nil {
			return nil, err
		}
		cfg.Threshold = st
	}
	return preprocess.New(cfg, preprocess.WithLogger(s.log))
}

func (s *Server) binarize(ctx context.Context, path string, fallback bool, strategy string) (*preprocess.Result, error) {
	p, err := s.pipeline(fallback, strategy)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", path, err)
	}
	return res, nil
}

// === Label Handlers ===

func (s *Server) handleLabelInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return photo.Describe(s.cache, a.Path, s.preprocess.MaxWorkingDimension)
}

type labelBinarizeArgs struct {
	pathArgs
	Format   string `json:"format"`
	Strategy string `json:"strategy"`
	Fallback bool   `json:"fallback"`
}

// BinarizeResult is the label_binarize response.
type BinarizeResult struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	Strategy     string `json:"strategy"`
	Radius       int    `json:"radius"`
	Format       string `json:"format"`
	MimeType     string `json:"mime_type"`
	ImageBase64  string `json:"image_base64"`
}

func (s *Server) handleLabelBinarize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelBinarizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	format, err := preprocess.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	res, err := s.binarize(ctx, a.Path, a.Fallback, a.Strategy)
	if err != nil {
		return nil, err
	}
	data, err := preprocess.EncodeBytes(res.Gray, format)
	if err != nil {
		return nil, err
	}

	return &BinarizeResult{
		Width:        res.Gray.Width,
		Height:       res.Gray.Height,
		SourceWidth:  res.SourceWidth,
		SourceHeight: res.SourceHeight,
		Strategy:     res.Strategy,
		Radius:       res.Radius,
		Format:       string(format),
		MimeType:     format.MimeType(),
		ImageBase64:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type labelOCRArgs struct {
	pathArgs
	MinConfidence *float64    `json:"min_confidence"`
	Strategy      string      `json:"strategy"`
	Fallback      bool        `json:"fallback"`
	Region        *regionArgs `json:"region"`
}

// OCRResult is the label_ocr response.
type OCRResult struct {
	Text          string     `json:"text"`
	Words         []ocr.Word `json:"words"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Strategy      string     `json:"strategy"`
	MinConfidence float64    `json:"min_confidence"`
}

func (s *Server) handleLabelOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a labelOCRArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.recognizer == nil {
		return nil, errNoRecognizer
	}
	minConfidence := s.minConfidence
	if a.MinConfidence != nil {
		minConfidence = *a.MinConfidence
	}

	res, err := s.binarize(ctx, a.Path, a.Fallback, a.Strategy)
	if err != nil {
		return nil, err
	}

	img := res.Gray.ToImage()
	var text *ocr.Result
	if a.Region != nil {
		rect := image.Rect(a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2)
		text, err = ocr.RecognizeRegion(ctx, s.recognizer, img, rect)
	} else {
		text, err = s.recognizer.Recognize(ctx, img)
	}
	if err != nil {
		return nil, err
	}

	if minConfidence > 0 {
		text = text.Filter(minConfidence)
	}
	if text.Words == nil {
		text.Words = []ocr.Word{}
	}

	s.log.WithFields(logrus.Fields{
		"path":  a.Path,
		"words": len(text.Words),
	}).Debug("label recognized")

	return &OCRResult{
		Text:          text.Text,
		Words:         text.Words,
		Width:         res.Gray.Width,
		Height:        res.Gray.Height,
		Strategy:      res.Strategy,
		MinConfidence: minConfidence,
	}, nil
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	switch rec := s.recognizer.(type) {
	case nil:
		return &ocr.EngineInfo{Error: errNoRecognizer.Error()}, nil
	case ocr.Describer:
		info := rec.Info()
		return &info, nil
	default:
		return &ocr.EngineInfo{Available: true, Backend: fmt.Sprintf("%T", rec)}, nil
	}
}
