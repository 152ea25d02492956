// Package executor implements the per-node-type handler contract
// (component C), the static registry (component D), and the reference
// executors (component E): manual-trigger, http-request, switch, wait,
// delay, and set.
package executor

import (
	"context"

	"github.com/flowcraft/engine/step"
)

// Context is the execution context shape threaded through the graph: an
// unordered map from string keys to arbitrary structured values.
// Executors must return a new map rather than mutate the one they are
// handed.
type Context = map[string]any

// Params is the uniform input every executor receives.
type Params struct {
	Data    map[string]any
	NodeID  string
	Context Context
	Step    step.Step
}

// Executor is the uniform node-type handler shape.
type Executor interface {
	Execute(ctx context.Context, p Params) (Context, error)
}

// CopyContext returns a shallow copy of c, the starting point for every
// executor's "return a fresh context" obligation.
func CopyContext(c Context) Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// stepName namespaces a checkpoint name by node id so two nodes of the
// same type in one workflow (two HTTP_REQUEST nodes, say) never collide
// on the same (executionId, name) checkpoint key.
func stepName(p Params, name string) string {
	return p.NodeID + ":" + name
}
