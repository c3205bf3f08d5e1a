package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rohanthewiz/serr"
)

// PathGuard resolves client-supplied paths against the sandbox root and
// rejects anything that escapes it. Root is canonical (symlinks resolved)
// at construction; Resolve canonicalizes the candidate the same way before
// the containment check so neither ".." segments nor symlink indirection
// can break out.
type PathGuard struct {
	root string
}

// NewPathGuard wraps an already-canonicalized root (see config.Load).
func NewPathGuard(root string) *PathGuard {
	return &PathGuard{root: root}
}

// Root returns the canonical sandbox root.
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve validates candidate against the sandbox root and returns the
// canonical absolute path. Pure validation: it stats nothing beyond symlink
// resolution and never reads file content. Failures are ErrPathTraversal
// or ErrInvalidArgument; messages never echo paths outside the root.
func (g *PathGuard) Resolve(candidate string) (string, error) {
	if candidate == "" {
		return "", NewToolError(ErrInvalidArgument, serr.New("path is required"))
	}
	if strings.ContainsRune(candidate, '\x00') {
		return "", NewToolError(ErrInvalidArgument, serr.New("path contains a null byte"))
	}

	joined := candidate
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(g.root, joined)
	}
	joined = filepath.Clean(joined)

	resolved, err := resolveExistingPrefix(joined)
	if err != nil {
		return "", NewPathError(ErrPathTraversal, serr.New("path escapes the sandbox root"), candidate)
	}

	if !g.contains(resolved) {
		return "", NewPathError(ErrPathTraversal, serr.New("path escapes the sandbox root"), candidate)
	}
	return resolved, nil
}

// Rel returns the root-relative form of a resolved path, for display to the
// caller. Resolved paths are descendants of root, so this cannot fail for
// values produced by Resolve.
func (g *PathGuard) Rel(resolved string) string {
	rel, err := filepath.Rel(g.root, resolved)
	if err != nil {
		return filepath.Base(resolved)
	}
	return rel
}

// contains checks canonical containment. A bare prefix match is not enough:
// /work-evil must not pass for root /work, so the prefix has to end at a
// separator boundary.
func (g *PathGuard) contains(resolved string) bool {
	if resolved == g.root {
		return true
	}
	return strings.HasPrefix(resolved, g.root+string(filepath.Separator))
}

// resolveExistingPrefix canonicalizes a path that may not exist yet.
// EvalSymlinks fails on missing files, so we resolve the deepest existing
// ancestor and rejoin the remaining segments. The remainder is already
// Clean, so it carries no ".." that could undo the resolved prefix.
func resolveExistingPrefix(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	dir := path
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", serr.F("no existing ancestor for path")
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent

		resolved, err = filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}
