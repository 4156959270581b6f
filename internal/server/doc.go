// Package server implements the MCP (Model Context Protocol) server for the
// wine-label preprocessing pipeline.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - notifications/initialized: Acknowledged without a response
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - label_info: Dimensions, format, working size and exposure of a photo
//   - label_binarize: Run the pipeline and return the encoded black-and-white grid
//   - label_ocr: Binarize, then recognize text with word boxes and confidences
//   - ocr_info: OCR engine availability, version and languages
//
// label_binarize and label_ocr accept "fallback" to select the low-cost
// mode and "strategy" to override the threshold step for one call.
//
// # Photo Caching
//
// Photo bytes are cached by path for the lifetime of the server, so repeated
// calls on the same label skip the disk read. Every call still runs the full
// pipeline; results are not cached.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - -32700: the request line is not valid JSON
//   - -32601: unknown method
//   - -32602: tools/call params do not decode
//   - -32000: the tool failed; data carries the Go error string
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Preprocess: preprocess.DefaultConfig(),
//	    Recognizer: tesseract.New(tesseract.Options{}),
//	    Logger:     log,
//	})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
