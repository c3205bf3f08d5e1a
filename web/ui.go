package web

import (
	"fmt"

	"github.com/rohanthewiz/element"
	"github.com/rohanthewiz/rweb"
)

// statusPage serves a small HTML overview of the session: the sandbox
// root, whether GitHub access is authenticated, and the registered tools.
func (h *toolHandlers) statusPage(c rweb.Context) error {
	return c.WriteHTML(h.generateStatusPage())
}

func (h *toolHandlers) generateStatusPage() string {
	b := element.NewBuilder()

	ghMode := "public repositories only (no GITHUB_TOKEN)"
	if h.cfg.GitHubToken != "" {
		ghMode = "authenticated"
	}

	b.Html().R(
		b.Head().R(
			b.Title().T("codescout"),
			b.Meta("charset", "UTF-8"),
			b.Style().T(statusCSS),
		),
		b.Body().R(
			b.H1().T("codescout"),
			b.P().T("Sandboxed code inspection tools for LLM agents"),
			b.Div("class", "facts").R(
				b.Div("class", "fact").R(
					b.Span("class", "fact-label").T("Sandbox root"),
					b.Span("class", "fact-value").T(h.cfg.Root),
				),
				b.Div("class", "fact").R(
					b.Span("class", "fact-label").T("GitHub access"),
					b.Span("class", "fact-value").T(ghMode),
				),
				b.Div("class", "fact").R(
					b.Span("class", "fact-label").T("Default result cap"),
					b.Span("class", "fact-value").T(fmt.Sprintf("%d", h.cfg.MaxResults)),
				),
			),
			b.H2().T("Tools"),
			b.Div("class", "tools").R(
				func() any {
					for _, tool := range h.registry.GetTools() {
						b.Div("class", "tool").R(
							b.Span("class", "tool-name").T(tool.Name),
							b.Span("class", "tool-desc").T(" — "+tool.Description),
						)
					}
					return nil
				}(),
			),
		),
	)

	return b.String()
}

const statusCSS = `
body { font-family: sans-serif; margin: 2rem auto; max-width: 48rem; color: #222; }
.fact { margin: 0.25rem 0; }
.fact-label { display: inline-block; min-width: 11rem; color: #666; }
.fact-value, .tool-name { font-family: monospace; background: #f4f4f4; padding: 0.1rem 0.3rem; border-radius: 3px; }
.tool { margin: 0.4rem 0; }
`
