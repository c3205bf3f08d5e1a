package tools

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"codescout/config"
)

// SearchMode selects name matching (glob over relative paths) or content
// matching (regex over file contents).
type SearchMode string

const (
	ModeName    SearchMode = "glob"
	ModeContent SearchMode = "grep"
)

// SearchQuery is one bounded search request scoped to the sandbox root.
type SearchQuery struct {
	Pattern    string
	Mode       SearchMode
	PathPrefix string
	MaxResults int
}

// contentBackend is the strategy behind content-mode search. Two variants
// exist: the external ripgrep engine and the line-by-line fallback scanner.
// Both honor the same scope, skip sensitive files before a hit counts
// toward the limit, and emit hits in scan order; the Searcher re-applies
// secret filtering and containment re-validation on top.
type contentBackend interface {
	name() string
	search(ctx context.Context, dir string, re *regexp.Regexp, pattern string, limit int) ([]SearchHit, error)
}

// Searcher dispatches search queries to the best available backend. The
// ripgrep probe runs once at construction, not per call; if ripgrep breaks
// mid-session the call falls back to the scanner rather than failing.
type Searcher struct {
	guard      *PathGuard
	maxResults int
	preferred  contentBackend
	fallback   contentBackend
}

// NewSearcher probes the environment once and fixes the backend choice for
// the session.
func NewSearcher(guard *PathGuard, defaultMax int) *Searcher {
	s := &Searcher{
		guard:      guard,
		maxResults: defaultMax,
		fallback:   &scanBackend{},
	}
	if _, err := exec.LookPath("rg"); err == nil {
		s.preferred = &ripgrepBackend{}
		logger.Debug("Content search will use ripgrep")
	} else {
		logger.Debug("ripgrep not found; content search will use the fallback scanner")
	}
	return s
}

// Search runs one query and returns an ordered, filtered, bounded result
// set. Hits carry root-relative paths. Backend output order is preserved,
// never re-sorted, so repeated identical queries over an unchanged tree are
// ordered identically.
func (s *Searcher) Search(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	if q.Pattern == "" {
		return nil, NewToolError(ErrInvalidArgument, serr.New("pattern is required"))
	}

	limit := q.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}
	if ceiling := config.ResultCeiling(); limit > ceiling {
		limit = ceiling
	}

	dir := s.guard.Root()
	if q.PathPrefix != "" {
		resolved, err := s.guard.Resolve(q.PathPrefix)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	switch q.Mode {
	case ModeName:
		return s.searchByName(ctx, dir, q.Pattern, limit)
	case ModeContent:
		return s.searchByContent(ctx, dir, q.Pattern, limit)
	default:
		return nil, NewToolError(ErrInvalidArgument, serr.F("invalid search mode: %q", string(q.Mode)))
	}
}

// searchByName glob-matches relative paths under dir. Patterns containing a
// separator match against the whole relative path with ** support; bare
// patterns match against base names at any depth.
func (s *Searcher) searchByName(ctx context.Context, dir, pattern string, limit int) (*SearchResults, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, NewToolError(ErrInvalidArgument, serr.F("invalid glob pattern: %q", pattern))
	}
	matchPath := strings.Contains(pattern, "/")

	res := &SearchResults{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return nil
		}
		target := filepath.Base(path)
		if matchPath {
			target = filepath.ToSlash(rel)
		}
		ok, merr := doublestar.Match(pattern, target)
		if merr != nil || !ok {
			return nil
		}
		if IsSensitivePath(path) || !s.inRoot(path) {
			return nil
		}

		if len(res.Hits) >= limit {
			res.Truncated = true
			return filepath.SkipAll
		}
		res.Hits = append(res.Hits, SearchHit{Path: s.guard.Rel(path)})
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		if ctx.Err() != nil {
			return nil, NewToolError(ErrSearch, ctx.Err())
		}
		return nil, NewToolError(ErrSearch, serr.Wrap(err, "name search failed"))
	}
	return res, nil
}

// searchByContent runs the preferred engine when one was found at probe
// time, dropping to the scanner if the engine fails at runtime (same path
// as absence, logged but not surfaced).
func (s *Searcher) searchByContent(ctx context.Context, dir, pattern string, limit int) (*SearchResults, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, NewToolError(ErrInvalidArgument, serr.Wrap(err, "invalid regex pattern"))
	}

	// Ask for one extra hit so truncation is detectable.
	backend := s.preferred
	var hits []SearchHit
	if backend != nil {
		hits, err = backend.search(ctx, dir, re, pattern, limit+1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, NewToolError(ErrSearch, ctx.Err())
			}
			logger.LogErr(err, "preferred search backend failed; using fallback scanner", "backend", backend.name())
			backend = nil
		}
	}
	if backend == nil {
		hits, err = s.fallback.search(ctx, dir, re, pattern, limit+1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, NewToolError(ErrSearch, ctx.Err())
			}
			return nil, NewToolError(ErrSearch, serr.Wrap(err, "content search failed"))
		}
	}

	res := &SearchResults{}
	for _, hit := range hits {
		if IsSensitivePath(hit.Path) || !s.inRoot(hit.Path) {
			continue
		}
		if len(res.Hits) >= limit {
			res.Truncated = true
			break
		}
		hit.Path = s.guard.Rel(hit.Path)
		res.Hits = append(res.Hits, hit)
	}
	return res, nil
}

// inRoot re-validates that a backend-reported path is inside the sandbox.
// Backends only scan under root, but hits cross a trust boundary here, so
// the check canonicalizes the same way PathGuard.Resolve does: a symlink
// inside root that points outside must not pass.
func (s *Searcher) inRoot(path string) bool {
	resolved, err := resolveExistingPrefix(filepath.Clean(path))
	if err != nil {
		return false
	}
	return s.guard.contains(resolved)
}

// ripgrepBackend shells out to rg with JSON output. Exit code 1 means no
// matches; anything else with stderr is a backend failure that triggers
// the fallback.
type ripgrepBackend struct{}

func (b *ripgrepBackend) name() string { return "ripgrep" }

type ripgrepEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		Lines struct {
			Text string `json:"text"`
		} `json:"lines"`
		LineNumber int `json:"line_number"`
	} `json:"data"`
}

func (b *ripgrepBackend) search(ctx context.Context, dir string, _ *regexp.Regexp, pattern string, limit int) ([]SearchHit, error) {
	args := []string{"--json", "--no-ignore-messages", "-e", pattern, dir}

	cmd := exec.CommandContext(ctx, "rg", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil // no matches
		}
		if stderr.Len() > 0 {
			return nil, serr.F("ripgrep failed: %s", strings.TrimSpace(stderr.String()))
		}
		return nil, serr.Wrap(err, "failed to run ripgrep")
	}

	var hits []SearchHit
	sc := bufio.NewScanner(&stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var ev ripgrepEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil || ev.Type != "match" {
			continue
		}
		// Filtered files must not consume the limit, or real matches
		// past them would be dropped without the truncation flag.
		if IsSensitivePath(ev.Data.Path.Text) {
			continue
		}
		hits = append(hits, SearchHit{
			Path: ev.Data.Path.Text,
			Line: ev.Data.LineNumber,
			Text: strings.TrimRight(ev.Data.Lines.Text, "\n"),
		})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

// scanBackend is the line-by-line fallback used when ripgrep is absent or
// broken. Walk order is lexical, which keeps repeated runs deterministic.
type scanBackend struct{}

func (b *scanBackend) name() string { return "scan" }

func (b *scanBackend) search(ctx context.Context, dir string, re *regexp.Regexp, _ string, limit int) ([]SearchHit, error) {
	var hits []SearchHit
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks are not followed: a link inside the tree can point
		// anywhere, and opening it would read the target's content.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		// Skipped here so filtered files never consume the limit.
		if IsSensitivePath(path) {
			return nil
		}
		if isBinaryFile(path) {
			return nil
		}

		fileHits, ferr := scanFile(path, re)
		if ferr != nil {
			return nil // unreadable files are skipped
		}
		hits = append(hits, fileHits...)
		if len(hits) >= limit {
			hits = hits[:limit]
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return nil, err
	}
	return hits, nil
}

func scanFile(path string, re *regexp.Regexp) ([]SearchHit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hits []SearchHit
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if re.MatchString(line) {
			hits = append(hits, SearchHit{Path: path, Line: lineNum, Text: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// isBinaryFile guesses binary-ness by extension, then by a null-byte sniff
// of the first 512 bytes.
func isBinaryFile(path string) bool {
	binaryExts := map[string]bool{
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".pdf": true, ".zip": true, ".tar": true, ".gz": true,
		".db": true, ".sqlite": true, ".bin": true, ".dat": true,
	}
	if binaryExts[strings.ToLower(filepath.Ext(path))] {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
