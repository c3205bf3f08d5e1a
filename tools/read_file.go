package tools

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/rohanthewiz/serr"
)

// LocalFileAccess composes PathGuard and the secret filter into safe read
// and search operations over the sandbox root.
type LocalFileAccess struct {
	guard    *PathGuard
	searcher *Searcher
}

// NewLocalFileAccess wires local access for a canonical root.
func NewLocalFileAccess(guard *PathGuard, searcher *Searcher) *LocalFileAccess {
	return &LocalFileAccess{guard: guard, searcher: searcher}
}

// Search delegates to the session searcher scoped to the sandbox root.
func (l *LocalFileAccess) Search(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	return l.searcher.Search(ctx, q)
}

// Read validates the candidate path and returns the full file content.
// Validation failures (traversal, sensitive name) are decided before any
// file content is touched.
func (l *LocalFileAccess) Read(candidate string) (*FileContent, error) {
	resolved, err := l.guard.Resolve(candidate)
	if err != nil {
		return nil, err
	}
	rel := l.guard.Rel(resolved)

	if IsSensitivePath(resolved) {
		return nil, NewPathError(ErrSensitive, serr.New("refusing to read a sensitive file"), rel)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPathError(ErrNotFound, serr.New("file not found"), rel)
		}
		return nil, NewPathError(ErrUpstream, serr.Wrap(err, "cannot stat file"), rel)
	}
	if info.IsDir() {
		return nil, NewPathError(ErrNotAFile, serr.New("path is a directory, not a file"), rel)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, NewPathError(ErrUpstream, serr.Wrap(err, "failed to read file"), rel)
	}
	if !utf8.Valid(data) {
		return nil, NewPathError(ErrDecode, serr.New("file is not valid UTF-8 text"), rel)
	}

	return &FileContent{Path: rel, Content: string(data)}, nil
}

// ReadFileTool exposes sandboxed file reading to the agent.
type ReadFileTool struct {
	local *LocalFileAccess
}

// NewReadFileTool wraps local file access.
func NewReadFileTool(local *LocalFileAccess) *ReadFileTool {
	return &ReadFileTool{local: local}
}

// GetDefinition returns the tool definition for the agent.
func (t *ReadFileTool) GetDefinition() Tool {
	return Tool{
		Name:        "read_file",
		Description: "Read the full contents of a file inside the sandbox root",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Root-relative path to the file to read",
				},
			},
			"required": []string{"file_path"},
		},
	}
}

// Execute reads the file and returns its numbered contents.
func (t *ReadFileTool) Execute(_ context.Context, input map[string]interface{}) (string, error) {
	path, err := RequireString(input, "file_path")
	if err != nil {
		return "", err
	}
	fc, err := t.local.Read(path)
	if err != nil {
		return "", err
	}
	return RenderFileContent(fc), nil
}
