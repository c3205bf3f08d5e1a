package tools

import (
	"codescout/config"
)

// DefaultRegistry wires the six operations against one session
// configuration. The path guard, searcher, and GitHub client are shared
// across tools; all are read-only after construction.
func DefaultRegistry(cfg *config.Config) *Registry {
	guard := NewPathGuard(cfg.Root)
	searcher := NewSearcher(guard, cfg.MaxResults)
	local := NewLocalFileAccess(guard, searcher)
	github := NewGitHubClient(cfg)

	registry := NewRegistry(cfg.Root)

	searchTool := NewSearchFilesTool(local)
	registry.Register(searchTool.GetDefinition(), searchTool)

	readTool := NewReadFileTool(local)
	registry.Register(readTool.GetDefinition(), readTool)

	prDiffTool := NewGetPRDiffTool(github)
	registry.Register(prDiffTool.GetDefinition(), prDiffTool)

	ghSearchTool := NewSearchGitHubFilesTool(github)
	registry.Register(ghSearchTool.GetDefinition(), ghSearchTool)

	ghReadTool := NewReadGitHubFileTool(github)
	registry.Register(ghReadTool.GetDefinition(), ghReadTool)

	ghGrepTool := NewGrepGitHubRepoTool(github)
	registry.Register(ghGrepTool.GetDefinition(), ghGrepTool)

	return registry
}
