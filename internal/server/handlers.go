package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-data/internal/imaging"
	"github.com/ironsheep/image-data/internal/resolver"
	"github.com/ironsheep/image-data/internal/tokens"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_data_transform").
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
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Error("tool failed", "tool", params.Name, "err", err)
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_data_transform":
		return s.handleTransform(ctx, args)
	case "image_data_resolve":
		return s.handleResolve(ctx, args)
	case "image_data_inspect":
		return s.handleInspect(ctx, args)
	case "image_data_tokens":
		return s.handleTokens(args)
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

// decodeArgs unmarshals tool arguments; absent arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Transform ===

type transformArgs struct {
	Text *string `json:"text"`
}

// Reference is an unresolved token as reported to clients.
type Reference struct {
	Token  string `json:"token"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// TransformResult is the result of image_data_transform.
type TransformResult struct {
	Text       string      `json:"text"`
	Replaced   int         `json:"replaced"`
	Unresolved []Reference `json:"unresolved"`
}

func (s *Server) handleTransform(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a transformArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Text == nil {
		return nil, errors.New("missing required argument: text")
	}

	res, err := s.transformer.Transform(ctx, *a.Text)
	if err != nil {
		return nil, err
	}

	out := &TransformResult{
		Text:       res.Text,
		Replaced:   res.Replaced,
		Unresolved: make([]Reference, 0, len(res.Unresolved)),
	}
	for _, ref := range res.Unresolved {
		out.Unresolved = append(out.Unresolved, Reference{
			Token:  ref.Token,
			Kind:   ref.Kind.String(),
			Path:   ref.Path,
			Line:   ref.Line,
			Column: ref.Column,
		})
	}
	return out, nil
}

// === Resolve ===

func (s *Server) handleResolve(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a struct{}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.transformer.Resolve(ctx)
}

// === Inspect ===

type inspectArgs struct {
	Path string `json:"path"`
}

// InspectResult is the result of image_data_inspect.
type InspectResult struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	imaging.Metadata
}

func (s *Server) handleInspect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a inspectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("missing required argument: path")
	}

	_, format, err := imaging.DecodeConfig(a.Path)
	if err != nil {
		return nil, err
	}

	m, err := s.transformer.Resolver().ResolveOne(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	return &InspectResult{
		ID:       resolver.ID(a.Path),
		Format:   format,
		Metadata: m,
	}, nil
}

// === Tokens ===

// TokenInfo describes one supported token.
type TokenInfo struct {
	Name    string `json:"name"`
	Field   string `json:"field"`
	Suffix  string `json:"suffix,omitempty"`
	Example string `json:"example"`
}

func (s *Server) handleTokens(args json.RawMessage) (interface{}, error) {
	var a struct{}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	specs := tokens.Table()
	out := make([]TokenInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, TokenInfo{
			Name:    spec.Name,
			Field:   spec.Field.String(),
			Suffix:  spec.Suffix,
			Example: spec.Name + "('src/images/logo.png')",
		})
	}
	return out, nil
}
