package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rohanthewiz/serr"
)

const (
	// Default GitHub REST API base URL
	defaultGitHubAPIURL = "https://api.github.com"

	// Hard ceiling on results any single search may return
	maxResultsCeiling = 500

	// Default per-search result cap when the caller does not supply one
	defaultMaxResults = 100
)

// Config holds the per-session configuration. It is constructed once at
// startup and never mutated afterward, so it is safe for unsynchronized
// concurrent reads across tool invocations.
type Config struct {
	// Root is the absolute directory all local file operations are
	// confined to. Symlinks are resolved at load time so containment
	// checks compare canonical paths.
	Root string

	// GitHubToken is optional; when empty, remote operations degrade to
	// public-repository access rather than failing at startup.
	GitHubToken string

	// GitHubAPIURL allows pointing remote operations at a test server.
	GitHubAPIURL string

	// MaxResults is the default result cap for searches.
	MaxResults int
}

// Load builds the session configuration. The sandbox root comes from
// CODESCOUT_ROOT (falling back to the current working directory) and is
// canonicalized so later containment checks are against a resolved path.
func Load() (*Config, error) {
	root := os.Getenv("CODESCOUT_ROOT")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, serr.Wrap(err, "failed to determine working directory")
		}
		root = wd
	}

	canonical, err := canonicalizeRoot(root)
	if err != nil {
		return nil, err
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultGitHubAPIURL
	}

	maxResults := defaultMaxResults
	if v := os.Getenv("CODESCOUT_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, serr.F("CODESCOUT_MAX_RESULTS: %q is not a positive integer", v)
		}
		maxResults = n
	}
	if maxResults > maxResultsCeiling {
		maxResults = maxResultsCeiling
	}

	return &Config{
		Root:         canonical,
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL: apiURL,
		MaxResults:   maxResults,
	}, nil
}

// ForRoot builds a configuration confined to the given directory, keeping
// the remaining fields at their environment-derived defaults. Used by tests
// and by embedders that manage the root themselves.
func ForRoot(root string) (*Config, error) {
	canonical, err := canonicalizeRoot(root)
	if err != nil {
		return nil, err
	}
	return &Config{
		Root:         canonical,
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL: defaultGitHubAPIURL,
		MaxResults:   defaultMaxResults,
	}, nil
}

// ResultCeiling returns the hard cap a caller-supplied max_results is
// clamped to.
func ResultCeiling() int {
	return maxResultsCeiling
}

func canonicalizeRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", serr.Wrap(err, "invalid sandbox root")
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", serr.Wrap(err, "failed to resolve sandbox root")
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", serr.Wrap(err, "cannot stat sandbox root")
	}
	if !info.IsDir() {
		return "", serr.F("sandbox root %q is not a directory", root)
	}
	return resolved, nil
}
