package web

import (
	"github.com/rohanthewiz/rweb"

	"codescout/config"
	"codescout/tools"
)

// SetupRoutes configures the HTTP surface over the tool registry. The
// adapter owns serialization only; validation, sandboxing, and filtering
// all live in the tools package.
func SetupRoutes(s *rweb.Server, cfg *config.Config, registry *tools.Registry) {
	h := &toolHandlers{cfg: cfg, registry: registry}

	s.Get("/", h.statusPage)
	s.Get("/api/tools", h.listTools)
	s.Post("/api/tool/:name", h.callTool)
}
