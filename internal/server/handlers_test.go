package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// callTool issues a tools/call request and returns the response
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// contentText extracts the text of the single content item of resp
func contentText(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	return text
}

func TestHandleToolsCall_Transform(t *testing.T) {
	s, imgPath := newTestServer(t)

	doc := ".logo {\n  width: image-width('" + imgPath + "');\n  color: image-colour('" + imgPath + "');\n  height: image-height('missing.png');\n}\n"
	resp := callTool(t, s, "image_data_transform", map[string]interface{}{"text": doc})

	var res TransformResult
	if err := json.Unmarshal([]byte(contentText(t, resp)), &res); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	want := ".logo {\n  width: 100px;\n  color: #ff0000;\n  height: image-height('missing.png');\n}\n"
	if res.Text != want {
		t.Errorf("Text:\ngot  %q\nwant %q", res.Text, want)
	}
	if res.Replaced != 2 {
		t.Errorf("Replaced: got %d, want 2", res.Replaced)
	}
	if len(res.Unresolved) != 1 {
		t.Fatalf("Unresolved: got %d, want 1", len(res.Unresolved))
	}
	ref := res.Unresolved[0]
	if ref.Kind != "image-height" || ref.Path != "missing.png" || ref.Line != 4 {
		t.Errorf("Unresolved[0]: got %+v", ref)
	}
}

func TestHandleToolsCall_TransformEmptyText(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callTool(t, s, "image_data_transform", map[string]interface{}{"text": ""})

	var res TransformResult
	if err := json.Unmarshal([]byte(contentText(t, resp)), &res); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if res.Text != "" || res.Replaced != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestHandleToolsCall_TransformMissingText(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callTool(t, s, "image_data_transform", map[string]interface{}{})

	if resp.Error == nil {
		t.Fatal("Expected error for missing text")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_TransformDecodeFailure(t *testing.T) {
	s, imgPath := newTestServer(t)
	broken := filepath.Join(filepath.Dir(imgPath), "broken.png")
	if err := os.WriteFile(broken, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := callTool(t, s, "image_data_transform", map[string]interface{}{"text": "a{}"})

	if resp.Error == nil {
		t.Fatal("Expected error for undecodable asset")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.HasPrefix(data, "image-data: ") || !strings.Contains(data, "broken.png") {
		t.Errorf("Error data: got %q", data)
	}
}

func TestHandleToolsCall_Resolve(t *testing.T) {
	s, imgPath := newTestServer(t)

	resp := callTool(t, s, "image_data_resolve", nil)

	var res map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(contentText(t, resp)), &res); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected 1 image, got %d", len(res))
	}
	m, ok := res[imgPath]
	if !ok {
		t.Fatalf("missing %s in %v", imgPath, res)
	}
	if m["width1x"] != float64(100) || m["height2x"] != float64(100) || m["colour"] != "#ff0000" {
		t.Errorf("metadata: got %v", m)
	}
}

func TestHandleToolsCall_Inspect(t *testing.T) {
	s, imgPath := newTestServer(t)

	resp := callTool(t, s, "image_data_inspect", map[string]interface{}{"path": imgPath})

	var res map[string]interface{}
	if err := json.Unmarshal([]byte(contentText(t, resp)), &res); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if res["format"] != "png" {
		t.Errorf("format: got %v, want png", res["format"])
	}
	if res["id"] != imgPath {
		t.Errorf("id: got %v, want %s", res["id"], imgPath)
	}
	if res["widthRatio1x"] != float64(200) {
		t.Errorf("widthRatio1x: got %v, want 200", res["widthRatio1x"])
	}
}

func TestHandleToolsCall_InspectErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"nonexistent file", map[string]interface{}{"path": "/nonexistent/image.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_data_inspect", tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_Tokens(t *testing.T) {
	s, _ := newTestServer(t)

	resp := callTool(t, s, "image_data_tokens", map[string]interface{}{})

	var res []TokenInfo
	if err := json.Unmarshal([]byte(contentText(t, resp)), &res); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(res) != 9 {
		t.Fatalf("expected 9 tokens, got %d", len(res))
	}
	if res[0].Name != "image-width" || res[0].Field != "width1x" || res[0].Suffix != "px" {
		t.Errorf("first token: got %+v", res[0])
	}
	last := res[len(res)-1]
	if last.Name != "image-colour" || last.Suffix != "" {
		t.Errorf("last token: got %+v", last)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer(t)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	}

	resp := s.handleToolsCall(context.Background(), req)

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t)

	_, err := s.executeTool(context.Background(), "unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)

	for _, name := range []string{"image_data_transform", "image_data_resolve", "image_data_inspect", "image_data_tokens"} {
		if _, err := s.executeTool(context.Background(), name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", name)
		}
	}
}
