package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/winelabel-mcp/internal/ocr"
	"github.com/ironsheep/winelabel-mcp/internal/photo"
	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// ServerName identifies the server in the initialize handshake.
const ServerName = "winelabel-mcp"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// maxRequestSize bounds a single request line.
const maxRequestSize = 1024 * 1024

// Server handles MCP protocol communication
type Server struct {
	cache         *photo.Cache
	preprocess    preprocess.Config
	params        preprocess.StrategyParams
	recognizer    ocr.Recognizer
	minConfidence float64
	version       string
	log           logrus.FieldLogger
}

// Options configures a Server. Zero fields fall back to defaults.
type Options struct {
	// Preprocess is the pipeline configuration used when a request does not
	// ask for the fallback mode. Defaults to preprocess.DefaultConfig().
	Preprocess preprocess.Config

	// StrategyParams are the tunables applied when a request names a threshold
	// strategy. Defaults to preprocess.DefaultStrategyParams().
	StrategyParams preprocess.StrategyParams

	// Recognizer runs OCR for label_ocr. Without one, label_ocr fails and
	// ocr_info reports the engine as unavailable.
	Recognizer ocr.Recognizer

	// MinConfidence is the default word confidence cutoff (0-100) for label_ocr.
	MinConfidence float64

	// Version is reported in the initialize handshake.
	Version string

	// Logger receives request and pipeline logs. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.Preprocess.MaxWorkingDimension == 0 && opts.Preprocess.Threshold == nil {
		opts.Preprocess = preprocess.DefaultConfig()
	}
	if opts.StrategyParams == (preprocess.StrategyParams{}) {
		opts.StrategyParams = preprocess.DefaultStrategyParams()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Logger = discard
	}
	return &Server{
		cache:         photo.NewCache(),
		preprocess:    opts.Preprocess,
		params:        opts.StrategyParams,
		recognizer:    opts.Recognizer,
		minConfidence: opts.MinConfidence,
		version:       opts.Version,
		log:           opts.Logger,
	}
}

// Run serves requests from stdin and writes responses to stdout until stdin
// closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes one
// response line per request to w. Notifications get no response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxRequestSize)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			s.send(encoder, s.errorResponse(nil, codeParseError, "Parse error", err.Error()))
			continue
		}

		if resp := s.handleRequest(ctx, &req); resp != nil {
			s.send(encoder, resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) send(encoder *json.Encoder, resp *MCPResponse) {
	if err := encoder.Encode(resp); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	mcpErr := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		mcpErr.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   mcpErr,
	}
}
