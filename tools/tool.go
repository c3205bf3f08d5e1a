package tools

import (
	"context"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Tool describes one operation to the agent: a name, a description, and a
// JSON schema for its arguments. The transport layer owns serialization;
// by the time a ToolUse reaches the registry its arguments are already
// decoded.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToolUse is one decoded invocation request.
type ToolUse struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// ToolResult is the uniform response shape for every operation: either
// rendered content or a classified error, never both.
type ToolResult struct {
	ToolUseID string    `json:"tool_use_id,omitempty"`
	Content   string    `json:"content"`
	IsError   bool      `json:"is_error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}

// Executor runs one tool call. The context bounds the call: on
// cancellation any spawned subprocess is killed and any in-flight network
// request aborted.
type Executor interface {
	Execute(ctx context.Context, input map[string]interface{}) (string, error)
}

// Registry holds the available tools and dispatches calls to them. It is
// populated once at startup and read-only afterward, so concurrent calls
// need no locking.
type Registry struct {
	tools     map[string]Tool
	order     []string
	executors map[string]Executor
	root      string
}

// NewRegistry creates an empty registry. root is used only to scrub
// absolute paths from outgoing error messages.
func NewRegistry(root string) *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		executors: make(map[string]Executor),
		root:      root,
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool, executor Executor) {
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.executors[tool.Name] = executor
}

// GetTools returns all registered tool definitions in registration order.
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Execute dispatches one call and normalizes any failure into the fixed
// error taxonomy before it leaves this package.
func (r *Registry) Execute(ctx context.Context, toolUse ToolUse) *ToolResult {
	executor, exists := r.executors[toolUse.Name]
	if !exists {
		return &ToolResult{
			ToolUseID: toolUse.ID,
			Content:   "unknown tool: " + toolUse.Name,
			IsError:   true,
			ErrorKind: ErrInvalidArgument,
		}
	}

	content, err := executor.Execute(ctx, toolUse.Input)
	if err != nil {
		te := NormalizeError(err, r.root)
		logger.Debug("Tool call failed", "tool", toolUse.Name, "kind", string(te.Kind))
		return &ToolResult{
			ToolUseID: toolUse.ID,
			Content:   te.Error(),
			IsError:   true,
			ErrorKind: te.Kind,
		}
	}
	return &ToolResult{ToolUseID: toolUse.ID, Content: content}
}

// GetString extracts a string argument from a decoded input bundle.
func GetString(input map[string]interface{}, key string) (string, bool) {
	val, exists := input[key]
	if !exists {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt extracts an integer argument. JSON numbers decode as float64, so
// both forms are accepted.
func GetInt(input map[string]interface{}, key string) (int, bool) {
	val, exists := input[key]
	if !exists {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// RequireString extracts a mandatory string argument or fails with
// ErrInvalidArgument.
func RequireString(input map[string]interface{}, key string) (string, error) {
	v, ok := GetString(input, key)
	if !ok || v == "" {
		return "", NewToolError(ErrInvalidArgument, serr.F("%s is required", key))
	}
	return v, nil
}
