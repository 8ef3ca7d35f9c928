package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_data_transform",
			Description: "Rewrite a stylesheet, replacing image-width, image-height, image-*-ratio and image-colour tokens with values measured from the project's image assets. Unresolved tokens are left in place and listed in the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Document text to rewrite",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "image_data_resolve",
			Description: "Resolve every image under the configured asset pattern and return its metadata keyed by path.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_data_inspect",
			Description: "Return the metadata of a single image file along with its detected format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the image file, relative to the project root",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_data_tokens",
			Description: "List the supported tokens with the metadata field and unit each one produces.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
