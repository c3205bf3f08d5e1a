package tools

import (
	"context"
)

// SearchFilesTool exposes local name/content search over the sandbox root.
type SearchFilesTool struct {
	local *LocalFileAccess
}

// NewSearchFilesTool wraps sandboxed local access.
func NewSearchFilesTool(local *LocalFileAccess) *SearchFilesTool {
	return &SearchFilesTool{local: local}
}

// GetDefinition returns the tool definition for the agent.
func (t *SearchFilesTool) GetDefinition() Tool {
	return Tool{
		Name:        "search_files",
		Description: "Search the local codebase by file name pattern (glob) or file content (grep)",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern for glob mode, regular expression for grep mode",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"glob", "grep"},
					"description": "Type of search to perform",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Root-relative directory to scope the search to (defaults to the whole sandbox)",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
				},
			},
			"required": []string{"pattern", "mode"},
		},
	}
}

// Execute runs the search and renders the bounded result set.
func (t *SearchFilesTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	pattern, err := RequireString(input, "pattern")
	if err != nil {
		return "", err
	}
	mode, err := RequireString(input, "mode")
	if err != nil {
		return "", err
	}
	prefix, _ := GetString(input, "path")
	maxResults, _ := GetInt(input, "max_results")

	res, err := t.local.Search(ctx, SearchQuery{
		Pattern:    pattern,
		Mode:       SearchMode(mode),
		PathPrefix: prefix,
		MaxResults: maxResults,
	})
	if err != nil {
		return "", err
	}
	return RenderHits(res, pattern), nil
}
