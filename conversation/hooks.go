package conversation

import (
	"context"
	"time"

	"github.com/fwojciec/docchat"
)

// NodeEvent describes one node execution. Duration, Fields, Err and
// Contained are only populated on leave.
type NodeEvent struct {
	Node     NodeID
	Duration time.Duration
	Fields   docchat.StateField
	Err      error

	// Contained is a failure the node recovered from, see
	// docchat.Update.Contained.
	Contained error
}

// Hooks are callbacks invoked around every node execution.
type Hooks struct {
	OnNodeEnter func(ctx context.Context, e NodeEvent)
	OnNodeLeave func(ctx context.Context, e NodeEvent)
}

// ChainHooks returns hooks that call each of hooks in order.
func ChainHooks(hooks ...Hooks) Hooks {
	var enters, leaves []func(context.Context, NodeEvent)
	for _, h := range hooks {
		if h.OnNodeEnter != nil {
			enters = append(enters, h.OnNodeEnter)
		}
		if h.OnNodeLeave != nil {
			leaves = append(leaves, h.OnNodeLeave)
		}
	}

	var out Hooks
	if len(enters) > 0 {
		out.OnNodeEnter = func(ctx context.Context, e NodeEvent) {
			for _, fn := range enters {
				fn(ctx, e)
			}
		}
	}
	if len(leaves) > 0 {
		out.OnNodeLeave = func(ctx context.Context, e NodeEvent) {
			for _, fn := range leaves {
				fn(ctx, e)
			}
		}
	}
	return out
}
