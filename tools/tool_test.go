package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codescout/config"
)

// newTestRegistry wires a full registry over a temp sandbox, exercising the
// same path DefaultRegistry uses in production.
func newTestRegistry(t *testing.T, files map[string]string) *Registry {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := config.ForRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	return DefaultRegistry(cfg)
}

func TestRegistryListsAllSixTools(t *testing.T) {
	registry := newTestRegistry(t, nil)

	want := []string{
		"search_files",
		"read_file",
		"get_pr_diff",
		"search_github_files",
		"read_github_file",
		"grep_github_repo",
	}
	defs := registry.GetTools()
	if len(defs) != len(want) {
		t.Fatalf("GetTools() returned %d tools, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("tool %d = %q, want %q", i, defs[i].Name, name)
		}
		if defs[i].InputSchema == nil {
			t.Errorf("tool %q has no input schema", name)
		}
	}
}

func TestRegistryEndToEndSearch(t *testing.T) {
	registry := newTestRegistry(t, map[string]string{
		"src/a.py": "# TODO: fix\n",
	})

	result := registry.Execute(context.Background(), ToolUse{
		ID:   "t1",
		Name: "search_files",
		Input: map[string]interface{}{
			"pattern": "TODO",
			"mode":    "grep",
		},
	})
	if result.IsError {
		t.Fatalf("Execute() returned error: %s", result.Content)
	}
	if result.ToolUseID != "t1" {
		t.Errorf("ToolUseID = %q", result.ToolUseID)
	}
	if !strings.Contains(result.Content, filepath.Join("src", "a.py")) ||
		!strings.Contains(result.Content, "TODO: fix") {
		t.Errorf("unexpected search output:\n%s", result.Content)
	}
}

func TestRegistryEndToEndReadRejections(t *testing.T) {
	registry := newTestRegistry(t, map[string]string{
		".env": "API_KEY=hunter2\n",
	})

	tests := []struct {
		name     string
		path     string
		wantKind ErrorKind
	}{
		{"traversal", "../etc/passwd", ErrPathTraversal},
		{"sensitive", ".env", ErrSensitive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := registry.Execute(context.Background(), ToolUse{
				Name:  "read_file",
				Input: map[string]interface{}{"file_path": tt.path},
			})
			if !result.IsError {
				t.Fatalf("read of %q succeeded:\n%s", tt.path, result.Content)
			}
			if result.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %s, want %s", result.ErrorKind, tt.wantKind)
			}
			if strings.Contains(result.Content, "hunter2") {
				t.Error("error content leaks secret material")
			}
		})
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := newTestRegistry(t, nil)

	result := registry.Execute(context.Background(), ToolUse{Name: "rm_rf"})
	if !result.IsError || result.ErrorKind != ErrInvalidArgument {
		t.Errorf("unknown tool result = %+v", result)
	}
}

func TestRegistryMissingArguments(t *testing.T) {
	registry := newTestRegistry(t, nil)

	tests := []struct {
		tool  string
		input map[string]interface{}
	}{
		{"search_files", map[string]interface{}{"mode": "grep"}},
		{"search_files", map[string]interface{}{"pattern": "x"}},
		{"read_file", nil},
		{"get_pr_diff", map[string]interface{}{"owner": "o", "repo": "r"}},
		{"search_github_files", map[string]interface{}{"owner": "o"}},
		{"grep_github_repo", map[string]interface{}{"repo": "r", "pattern": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			result := registry.Execute(context.Background(), ToolUse{Name: tt.tool, Input: tt.input})
			if !result.IsError || result.ErrorKind != ErrInvalidArgument {
				t.Errorf("Execute(%s, %v) = %+v, want %s", tt.tool, tt.input, result, ErrInvalidArgument)
			}
		})
	}
}

func TestGetStringAndGetInt(t *testing.T) {
	input := map[string]interface{}{
		"s": "hello",
		"f": float64(7), // JSON numbers decode as float64
		"i": 3,
		"b": true,
	}

	if v, ok := GetString(input, "s"); !ok || v != "hello" {
		t.Errorf("GetString(s) = %q, %v", v, ok)
	}
	if _, ok := GetString(input, "missing"); ok {
		t.Error("GetString(missing) reported ok")
	}
	if _, ok := GetString(input, "b"); ok {
		t.Error("GetString(b) reported ok for a bool")
	}
	if v, ok := GetInt(input, "f"); !ok || v != 7 {
		t.Errorf("GetInt(f) = %d, %v", v, ok)
	}
	if v, ok := GetInt(input, "i"); !ok || v != 3 {
		t.Errorf("GetInt(i) = %d, %v", v, ok)
	}
	if _, ok := GetInt(input, "s"); ok {
		t.Error("GetInt(s) reported ok for a string")
	}
}
