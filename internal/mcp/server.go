package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is a registry of MCP tools.
//
// Tools can be invoked in-process with CallTool, or served to a client with
// Serve, which registers every tool on an official SDK server.
type Server struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*tool
	order   []string
}

type tool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewServer creates an empty tool registry.
func NewServer(name, version string) *Server {
	return &Server{
		name:    name,
		version: version,
		tools:   make(map[string]*tool, 12),
	}
}

// AddTool registers a tool with the server. A later registration with the
// same name replaces the earlier one.
func (s *Server) AddTool(t *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[t.Name]; !exists {
		s.order = append(s.order, t.Name)
	}

	s.tools[t.Name] = &tool{tool: t, handler: handler}
}

// Name returns the server name.
func (s *Server) Name() string {
	return s.name
}

// Version returns the server version.
func (s *Server) Version() string {
	return s.version
}

// ListTools returns the registered tools in registration order.
func (s *Server) ListTools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*mcp.Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tools[name].tool)
	}

	return out
}

// CallTool executes a tool by name with the given input. Unknown tools and
// handler failures are reported as error results, not Go errors.
func (s *Server) CallTool(ctx context.Context, name string, input map[string]any) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name), nil
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return ErrorResult("Failed to marshal input: " + err.Error()), nil
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return ErrorResult("Tool execution failed: " + err.Error()), nil
	}

	return result, nil
}

// MCPServer builds an SDK server carrying every registered tool.
func (s *Server) MCPServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.order {
		t := s.tools[name]
		srv.AddTool(t.tool, t.handler)
	}

	return srv
}

// Serve runs the server on transport until the client disconnects or ctx
// ends.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if err := s.MCPServer().Run(ctx, transport); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}

	return nil
}

// ObjectSchema builds an object schema from simple type names.
//
// Input format: {"expression": "string"}, {"frame": "int"}
// Properties in required are listed as required.
func ObjectSchema(required, optional map[string]string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(required)+len(optional))
	names := make([]string, 0, len(required))

	for name, goType := range required {
		properties[name] = goTypeToJSONSchema(goType)
		names = append(names, name)
	}

	for name, goType := range optional {
		properties[name] = goTypeToJSONSchema(goType)
	}

	slices.Sort(names)

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   names,
	}
}

// goTypeToJSONSchema converts a Go type string to a JSON Schema type.
func goTypeToJSONSchema(goType string) *jsonschema.Schema {
	switch goType {
	case "string":
		return &jsonschema.Schema{Type: "string"}
	case "int", "int64":
		return &jsonschema.Schema{Type: "integer"}
	case "float64", "number":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	default:
		if len(goType) > 2 && goType[:2] == "[]" {
			return &jsonschema.Schema{
				Type:  "array",
				Items: goTypeToJSONSchema(goType[2:]),
			}
		}

		return &jsonschema.Schema{Type: "string"}
	}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	if inputSchema == nil {
		inputSchema = &jsonschema.Schema{Type: "object"}
	}

	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	if args == nil {
		args = make(map[string]any)
	}

	return args, nil
}
