package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docchat/conversation"
)

// NewHooks returns machine hooks logging each node at debug level. Contained
// failures are logged at warn level.
func NewHooks(logger *slog.Logger) conversation.Hooks {
	return conversation.Hooks{
		OnNodeEnter: func(ctx context.Context, e conversation.NodeEvent) {
			logger.DebugContext(ctx, "node enter", "node", string(e.Node))
		},
		OnNodeLeave: func(ctx context.Context, e conversation.NodeEvent) {
			logger.DebugContext(ctx, "node leave",
				"node", string(e.Node),
				"fields", e.Fields.String(),
				"duration", e.Duration,
				"err", e.Err,
			)
			if e.Contained != nil {
				logger.WarnContext(ctx, "node degraded", "node", string(e.Node), "err", e.Contained)
			}
		},
	}
}
