package tools

import (
	"fmt"
	"strings"

	"github.com/rohanthewiz/serr"
)

// SearchHit is the uniform result shape shared by every search backend:
// ripgrep stdout, the fallback scanner, and the GitHub code-search API all
// normalize into it. Paths are root-relative for local hits and
// repo-relative for remote ones; an absolute local path in a hit is a bug.
type SearchHit struct {
	Path string `json:"path"`
	Line int    `json:"line,omitempty"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// SearchResults carries hits plus the explicit truncation indicator; a
// truncated response is never a silent subset.
type SearchResults struct {
	Hits      []SearchHit `json:"hits"`
	Truncated bool        `json:"truncated"`
}

// FileContent is a fully-read file. EncodingNote records transparent
// transport decoding (e.g. base64 from the GitHub contents API).
type FileContent struct {
	Path         string `json:"path"`
	Content      string `json:"content"`
	EncodingNote string `json:"encoding_note,omitempty"`
}

// DiffFile is one changed file within a pull request.
type DiffFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// DiffResult is the per-file change set of a pull request, in the order the
// provider returned it.
type DiffResult struct {
	PRNumber int        `json:"pr_number"`
	Files    []DiffFile `json:"files"`
}

// RenderHits formats search results as the text block handed back to the
// agent, ending with the explicit truncation line when the result set is a
// bounded prefix of a larger one.
func RenderHits(res *SearchResults, pattern string) string {
	if len(res.Hits) == 0 {
		return fmt.Sprintf("No matches found for pattern '%s'\n", pattern)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for pattern '%s':\n\n", len(res.Hits), pattern)
	for _, hit := range res.Hits {
		switch {
		case hit.Line > 0:
			fmt.Fprintf(&b, "  %s:%d: %s\n", hit.Path, hit.Line, strings.TrimRight(hit.Text, "\n"))
		case hit.URL != "":
			fmt.Fprintf(&b, "  %s\n    %s\n", hit.Path, hit.URL)
		default:
			fmt.Fprintf(&b, "  %s\n", hit.Path)
		}
	}
	if res.Truncated {
		fmt.Fprintf(&b, "\n(Results truncated at %d matches; narrow the pattern to see more)\n", len(res.Hits))
	}
	return b.String()
}

// RenderFileContent formats a file with line numbers for the agent.
func RenderFileContent(fc *FileContent) string {
	lines := strings.Split(fc.Content, "\n")
	numbered := make([]string, len(lines))
	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%d\t%s", i+1, line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s", fc.Path)
	if fc.EncodingNote != "" {
		fmt.Fprintf(&b, " (%s)", fc.EncodingNote)
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(numbered, "\n"))
	return b.String()
}

// RenderDiff formats a pull-request change set, concatenating per-file
// patches in provider order.
func RenderDiff(d *DiffResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PR #%d: %d changed file(s)\n\n", d.PRNumber, len(d.Files))
	for _, f := range d.Files {
		fmt.Fprintf(&b, "=== %s (%s, +%d -%d) ===\n", f.Path, f.Status, f.Additions, f.Deletions)
		if f.Patch != "" {
			b.WriteString(f.Patch)
			if !strings.HasSuffix(f.Patch, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// NormalizeError maps any failure onto the fixed ToolError taxonomy and
// scrubs the sandbox root from its message so callers never see the
// machine's directory layout.
func NormalizeError(err error, root string) *ToolError {
	te, ok := err.(*ToolError)
	if !ok {
		te = NewToolError(ErrUpstream, err)
	}
	te.Err = serr.New(scrubRoot(te.Err.Error(), root))
	return te
}

// scrubRoot replaces occurrences of the absolute sandbox root with "." in
// error text that may wrap raw os errors.
func scrubRoot(msg, root string) string {
	if root == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, root+"/", "")
	return strings.ReplaceAll(msg, root, ".")
}
