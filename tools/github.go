package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohanthewiz/serr"

	"codescout/config"
)

const githubSearchPageSize = 100

// RemoteRepoRef identifies a hosted repository and an optional ref/prefix
// scope within it.
type RemoteRepoRef struct {
	Owner  string
	Repo   string
	Ref    string
	Prefix string
}

func (r RemoteRepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// GitHubClient mirrors the local search/read contract against the GitHub
// REST API, normalizing authentication, pagination, and the error taxonomy.
// The token is optional; without one, access degrades to public
// repositories only. The client never retries internally — retry policy
// belongs to the caller, who receives ErrRateLimited with the provider's
// retry-after hint.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxResults int
}

// NewGitHubClient builds a client from session configuration.
func NewGitHubClient(cfg *config.Config) *GitHubClient {
	return &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.GitHubAPIURL,
		token:      cfg.GitHubToken,
		maxResults: cfg.MaxResults,
	}
}

// GetPRDiff fetches the per-file change set of a pull request, flattening
// the provider's pagination into one ordered sequence.
func (c *GitHubClient) GetPRDiff(ctx context.Context, ref RemoteRepoRef, prNumber int) (*DiffResult, error) {
	if prNumber < 1 {
		return nil, NewToolError(ErrInvalidArgument, serr.New("pr_number must be a positive integer"))
	}

	type prFile struct {
		Filename  string `json:"filename"`
		Status    string `json:"status"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
		Patch     string `json:"patch"`
	}

	result := &DiffResult{PRNumber: prNumber}
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d",
			c.baseURL, url.PathEscape(ref.Owner), url.PathEscape(ref.Repo), prNumber, githubSearchPageSize, page)

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var files []prFile
		if err := json.Unmarshal(body, &files); err != nil {
			return nil, NewToolError(ErrUpstream, serr.Wrap(err, "unexpected pull request response"))
		}
		for _, f := range files {
			result.Files = append(result.Files, DiffFile{
				Path:      f.Filename,
				Status:    f.Status,
				Additions: f.Additions,
				Deletions: f.Deletions,
				Patch:     f.Patch,
			})
		}
		if len(files) < githubSearchPageSize {
			break
		}
	}
	return result, nil
}

// SearchFiles finds repository files by name pattern via the code-search
// endpoint, filtered by the same secret patterns as local search.
func (c *GitHubClient) SearchFiles(ctx context.Context, ref RemoteRepoRef, namePattern string) (*SearchResults, error) {
	if namePattern == "" {
		return nil, NewToolError(ErrInvalidArgument, serr.New("pattern is required"))
	}
	q := fmt.Sprintf("repo:%s/%s filename:%s", ref.Owner, ref.Repo, namePattern)
	if ref.Prefix != "" {
		q += " path:" + ref.Prefix
	}
	return c.searchCode(ctx, q)
}

// Grep searches file contents via the code-search endpoint, translating
// provider pagination into one bounded result sequence. The provider does
// not report line numbers, so hits carry path and URL only — an explicit
// capability gap, not a silent omission.
func (c *GitHubClient) Grep(ctx context.Context, ref RemoteRepoRef, contentPattern string) (*SearchResults, error) {
	if contentPattern == "" {
		return nil, NewToolError(ErrInvalidArgument, serr.New("pattern is required"))
	}
	q := fmt.Sprintf("repo:%s/%s %s", ref.Owner, ref.Repo, contentPattern)
	if ref.Prefix != "" {
		q += " path:" + ref.Prefix
	}
	return c.searchCode(ctx, q)
}

// ReadFile fetches one file through the contents API. The provider encodes
// bodies in base64; decoding is transparent, and a decode failure is
// ErrDecode, distinct from ErrNotFound.
func (c *GitHubClient) ReadFile(ctx context.Context, ref RemoteRepoRef, path string) (*FileContent, error) {
	if path == "" {
		return nil, NewToolError(ErrInvalidArgument, serr.New("file_path is required"))
	}
	if IsSensitivePath(path) {
		return nil, NewPathError(ErrSensitive, serr.New("refusing to read a sensitive file"), path)
	}

	branch := ref.Ref
	if branch == "" {
		branch = "main"
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, url.PathEscape(ref.Owner), url.PathEscape(ref.Repo), escapePath(path), url.QueryEscape(branch))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Type     string `json:"type"`
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewToolError(ErrUpstream, serr.Wrap(err, "unexpected contents response"))
	}
	if payload.Type != "file" {
		return nil, NewPathError(ErrNotAFile, serr.F("%s is not a file", path), path)
	}

	if payload.Encoding != "base64" {
		return nil, NewPathError(ErrDecode, serr.F("unsupported content encoding: %q", payload.Encoding), path)
	}
	raw, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		return nil, NewPathError(ErrDecode, serr.Wrap(err, "failed to decode file content"), path)
	}
	if !utf8.Valid(raw) {
		return nil, NewPathError(ErrDecode, serr.New("file is not valid UTF-8 text"), path)
	}

	return &FileContent{
		Path:         path,
		Content:      string(raw),
		EncodingNote: "decoded from base64",
	}, nil
}

// searchCode pages through the code-search endpoint until the result cap
// or the last page, filtering sensitive paths from hits.
func (c *GitHubClient) searchCode(ctx context.Context, query string) (*SearchResults, error) {
	res := &SearchResults{}
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/search/code?q=%s&per_page=%d&page=%d",
			c.baseURL, url.QueryEscape(query), githubSearchPageSize, page)

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var payload struct {
			TotalCount int `json:"total_count"`
			Items      []struct {
				Path    string `json:"path"`
				HTMLURL string `json:"html_url"`
			} `json:"items"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, NewToolError(ErrUpstream, serr.Wrap(err, "unexpected search response"))
		}

		for _, item := range payload.Items {
			if IsSensitivePath(item.Path) {
				continue
			}
			if len(res.Hits) >= c.maxResults {
				res.Truncated = true
				return res, nil
			}
			res.Hits = append(res.Hits, SearchHit{Path: item.Path, URL: item.HTMLURL})
		}
		if len(payload.Items) < githubSearchPageSize {
			break
		}
	}
	return res, nil
}

// get performs one authenticated request and maps failure statuses onto the
// error taxonomy. Rate-limit responses carry the provider's retry hint;
// they are surfaced, never retried here.
func (c *GitHubClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewToolError(ErrInvalidArgument, serr.Wrap(err, "failed to build request"))
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewToolError(ErrUpstream, ctx.Err())
		}
		return nil, NewToolError(ErrUpstream, serr.Wrap(err, "request to GitHub failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, NewToolError(ErrUpstream, serr.Wrap(err, "failed to read response body"))
		}
		return body, nil
	}

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if isRateLimited(resp) {
		return nil, NewRateLimitError(
			serr.F("GitHub rate limit exceeded (status %d)", resp.StatusCode),
			retryAfterSeconds(resp))
	}

	kind := kindForStatus(resp.StatusCode)
	switch kind {
	case ErrAuthRequired:
		return nil, NewToolError(kind, serr.New("authentication required; set GITHUB_TOKEN for private repositories"))
	case ErrNotFound:
		return nil, NewToolError(kind, serr.New("not found on GitHub"))
	default:
		return nil, NewToolError(kind, serr.F("GitHub API returned status %d", resp.StatusCode))
	}
}

// isRateLimited distinguishes a rate-limit 403 from a plain auth 403 by the
// provider's rate-limit headers.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// retryAfterSeconds extracts the provider's retry hint, preferring
// Retry-After over the X-RateLimit-Reset epoch. Zero means no hint.
func retryAfterSeconds(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if delta := epoch - time.Now().Unix(); delta > 0 {
				return int(delta)
			}
		}
	}
	return 0
}

// escapePath escapes a repository file path for a URL without escaping the
// path separators themselves.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
