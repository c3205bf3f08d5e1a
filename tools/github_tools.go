package tools

import (
	"context"

	"github.com/rohanthewiz/serr"
)

func repoRefFromInput(input map[string]interface{}) (RemoteRepoRef, error) {
	owner, err := RequireString(input, "owner")
	if err != nil {
		return RemoteRepoRef{}, err
	}
	repo, err := RequireString(input, "repo")
	if err != nil {
		return RemoteRepoRef{}, err
	}
	ref := RemoteRepoRef{Owner: owner, Repo: repo}
	ref.Ref, _ = GetString(input, "ref")
	ref.Prefix, _ = GetString(input, "path_prefix")
	return ref, nil
}

var repoProperties = map[string]interface{}{
	"owner": map[string]interface{}{
		"type":        "string",
		"description": "Repository owner (user or organization)",
	},
	"repo": map[string]interface{}{
		"type":        "string",
		"description": "Repository name",
	},
}

// GetPRDiffTool fetches pull-request change sets from GitHub.
type GetPRDiffTool struct {
	client *GitHubClient
}

func NewGetPRDiffTool(client *GitHubClient) *GetPRDiffTool {
	return &GetPRDiffTool{client: client}
}

func (t *GetPRDiffTool) GetDefinition() Tool {
	props := map[string]interface{}{
		"pr_number": map[string]interface{}{
			"type":        "integer",
			"description": "Pull request number",
		},
	}
	for k, v := range repoProperties {
		props[k] = v
	}
	return Tool{
		Name:        "get_pr_diff",
		Description: "Fetch the per-file changes of a GitHub pull request",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"owner", "repo", "pr_number"},
		},
	}
}

func (t *GetPRDiffTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	ref, err := repoRefFromInput(input)
	if err != nil {
		return "", err
	}
	prNumber, ok := GetInt(input, "pr_number")
	if !ok {
		return "", NewToolError(ErrInvalidArgument, serr.New("pr_number is required"))
	}
	diff, err := t.client.GetPRDiff(ctx, ref, prNumber)
	if err != nil {
		return "", err
	}
	return RenderDiff(diff), nil
}

// SearchGitHubFilesTool finds repository files by name pattern.
type SearchGitHubFilesTool struct {
	client *GitHubClient
}

func NewSearchGitHubFilesTool(client *GitHubClient) *SearchGitHubFilesTool {
	return &SearchGitHubFilesTool{client: client}
}

func (t *SearchGitHubFilesTool) GetDefinition() Tool {
	props := map[string]interface{}{
		"pattern": map[string]interface{}{
			"type":        "string",
			"description": "Filename pattern to search for",
		},
		"path_prefix": map[string]interface{}{
			"type":        "string",
			"description": "Optional path prefix to search within (e.g. 'src/')",
		},
	}
	for k, v := range repoProperties {
		props[k] = v
	}
	return Tool{
		Name:        "search_github_files",
		Description: "Search a GitHub repository for files by name or path pattern",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"owner", "repo", "pattern"},
		},
	}
}

func (t *SearchGitHubFilesTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	ref, err := repoRefFromInput(input)
	if err != nil {
		return "", err
	}
	pattern, err := RequireString(input, "pattern")
	if err != nil {
		return "", err
	}
	res, err := t.client.SearchFiles(ctx, ref, pattern)
	if err != nil {
		return "", err
	}
	return RenderHits(res, pattern), nil
}

// ReadGitHubFileTool reads one file from a GitHub repository.
type ReadGitHubFileTool struct {
	client *GitHubClient
}

func NewReadGitHubFileTool(client *GitHubClient) *ReadGitHubFileTool {
	return &ReadGitHubFileTool{client: client}
}

func (t *ReadGitHubFileTool) GetDefinition() Tool {
	props := map[string]interface{}{
		"file_path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the file within the repository",
		},
		"ref": map[string]interface{}{
			"type":        "string",
			"description": "Branch or commit (defaults to 'main')",
		},
	}
	for k, v := range repoProperties {
		props[k] = v
	}
	return Tool{
		Name:        "read_github_file",
		Description: "Read the contents of a file from a GitHub repository",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"owner", "repo", "file_path"},
		},
	}
}

func (t *ReadGitHubFileTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	ref, err := repoRefFromInput(input)
	if err != nil {
		return "", err
	}
	path, err := RequireString(input, "file_path")
	if err != nil {
		return "", err
	}
	fc, err := t.client.ReadFile(ctx, ref, path)
	if err != nil {
		return "", err
	}
	return RenderFileContent(fc), nil
}

// GrepGitHubRepoTool searches file contents in a GitHub repository.
type GrepGitHubRepoTool struct {
	client *GitHubClient
}

func NewGrepGitHubRepoTool(client *GitHubClient) *GrepGitHubRepoTool {
	return &GrepGitHubRepoTool{client: client}
}

func (t *GrepGitHubRepoTool) GetDefinition() Tool {
	props := map[string]interface{}{
		"pattern": map[string]interface{}{
			"type":        "string",
			"description": "Code content to search for",
		},
		"path_prefix": map[string]interface{}{
			"type":        "string",
			"description": "Optional path prefix to search within",
		},
	}
	for k, v := range repoProperties {
		props[k] = v
	}
	return Tool{
		Name:        "grep_github_repo",
		Description: "Search for code content in a GitHub repository (grep-like search)",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"owner", "repo", "pattern"},
		},
	}
}

func (t *GrepGitHubRepoTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	ref, err := repoRefFromInput(input)
	if err != nil {
		return "", err
	}
	pattern, err := RequireString(input, "pattern")
	if err != nil {
		return "", err
	}
	res, err := t.client.Grep(ctx, ref, pattern)
	if err != nil {
		return "", err
	}
	return RenderHits(res, pattern), nil
}
