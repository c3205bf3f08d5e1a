package web

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"codescout/config"
	"codescout/tools"
)

// callTimeout bounds a single tool invocation; on expiry any spawned
// search process is killed and any outbound GitHub call aborted.
const callTimeout = 60 * time.Second

type toolHandlers struct {
	cfg      *config.Config
	registry *tools.Registry
}

// listTools returns the definitions of every registered operation.
func (h *toolHandlers) listTools(c rweb.Context) error {
	return c.WriteJSON(h.registry.GetTools())
}

// callTool executes one operation. The request body carries the decoded
// argument bundle; the response is the uniform ToolResult shape whether
// the call succeeded or failed.
func (h *toolHandlers) callTool(c rweb.Context) error {
	name := c.Request().Param("name")

	var input map[string]interface{}
	if body := c.Request().Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
		}
	}

	// rweb requests carry no stdlib context, so the timeout is the only
	// cancellation bound for in-flight work.
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result := h.registry.Execute(ctx, tools.ToolUse{Name: name, Input: input})
	if result.IsError {
		logger.Debug("Tool call returned error", "tool", name, "kind", string(result.ErrorKind))
	}
	return c.WriteJSON(result)
}
