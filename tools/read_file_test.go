package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T, files map[string][]byte) (*LocalFileAccess, string) {
	t.Helper()
	guard, root := newTestGuard(t)

	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewLocalFileAccess(guard, &Searcher{guard: guard, maxResults: 100, fallback: &scanBackend{}}), root
}

func TestReadReturnsContent(t *testing.T) {
	local, _ := newTestLocal(t, map[string][]byte{
		"src/a.py": []byte("def main():\n    pass\n"),
	})

	fc, err := local.Read("src/a.py")
	if err != nil {
		t.Fatalf("Read() unexpected error: %v", err)
	}
	if fc.Path != filepath.Join("src", "a.py") {
		t.Errorf("Path = %q, want src/a.py", fc.Path)
	}
	if fc.Content != "def main():\n    pass\n" {
		t.Errorf("Content = %q", fc.Content)
	}
	if fc.EncodingNote != "" {
		t.Errorf("EncodingNote = %q, want empty for a plain read", fc.EncodingNote)
	}
}

func TestReadFailureKinds(t *testing.T) {
	local, _ := newTestLocal(t, map[string][]byte{
		"ok.txt": []byte("fine\n"),
		".env":   []byte("API_KEY=hunter2\n"),
		"bin":    {0x00, 0xff, 0x00, 0xfe},
	})

	tests := []struct {
		name     string
		path     string
		wantKind ErrorKind
	}{
		{"traversal outside root", "../etc/passwd", ErrPathTraversal},
		{"sensitive file inside root", ".env", ErrSensitive},
		{"missing file", "nope.txt", ErrNotFound},
		{"directory", ".", ErrNotAFile},
		{"non-text content", "bin", ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := local.Read(tt.path)
			if err == nil {
				t.Fatalf("Read(%q) succeeded, want %s", tt.path, tt.wantKind)
			}
			if kind := KindOf(err); kind != tt.wantKind {
				t.Errorf("Read(%q) error kind = %s, want %s", tt.path, kind, tt.wantKind)
			}
		})
	}
}

func TestReadErrorsNeverLeakAbsolutePaths(t *testing.T) {
	local, root := newTestLocal(t, nil)

	for _, path := range []string{"../etc/passwd", "missing.txt"} {
		_, err := local.Read(path)
		if err == nil {
			t.Fatalf("Read(%q) succeeded unexpectedly", path)
		}
		if strings.Contains(err.Error(), root) {
			t.Errorf("Read(%q) error leaks the sandbox root: %v", path, err)
		}
	}
}

func TestReadFileToolRendersNumberedLines(t *testing.T) {
	local, _ := newTestLocal(t, map[string][]byte{
		"a.txt": []byte("first\nsecond\n"),
	})

	tool := NewReadFileTool(local)
	out, err := tool.Execute(context.Background(), map[string]interface{}{
		"file_path": "a.txt",
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if !strings.Contains(out, "1\tfirst") || !strings.Contains(out, "2\tsecond") {
		t.Errorf("Execute() output missing numbered lines:\n%s", out)
	}
}
