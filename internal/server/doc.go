// Package server implements the MCP (Model Context Protocol) server for image-data.
//
// This package provides a JSON-RPC 2.0 server that exposes the stylesheet
// transform through the MCP protocol, so an editor or assistant can rewrite
// documents and look up image metadata without running the build.
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
//   - image_data_transform: Rewrite a document's image tokens
//   - image_data_resolve: Metadata for every configured image asset
//   - image_data_inspect: Metadata and format of one image
//   - image_data_tokens: The supported token names and their units
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
//	t, err := transform.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//	srv := server.New(t, version, logger)
//	return srv.Run(ctx)
package server
