package executor

import (
	"fmt"

	"github.com/flowcraft/engine/model"
)

// Registry is the process-wide node-type-to-executor mapping (component
// D). Registration is static: built once at process start, never
// hot-reloaded.
type Registry struct {
	executors map[model.NodeType]Executor
}

// NewRegistry builds the registry with the reference executors
// registered under their node types. INITIAL is aliased to
// MANUAL_TRIGGER's executor, matching the data model's lifecycle note
// that INITIAL is semantically equivalent to MANUAL_TRIGGER.
func NewRegistry() *Registry {
	manualTrigger := NewManualTriggerExecutor()
	r := &Registry{executors: make(map[model.NodeType]Executor)}
	r.Register(model.NodeTypeManualTrigger, manualTrigger)
	r.Register(model.NodeTypeInitial, manualTrigger)
	r.Register(model.NodeTypeHttpRequest, NewHTTPRequestExecutor())
	r.Register(model.NodeTypeSwitch, NewSwitchExecutor())
	r.Register(model.NodeTypeWait, NewWaitExecutor())
	r.Register(model.NodeTypeDelay, NewDelayExecutor())
	r.Register(model.NodeTypeSet, NewSetExecutor())
	return r
}

// Register binds an executor to a node type, overwriting any prior
// binding - used by NewRegistry for the INITIAL alias and by tests that
// need a stub executor.
func (r *Registry) Register(t model.NodeType, e Executor) {
	r.executors[t] = e
}

// Get looks up the executor for a node type. Lookup is total over the
// registered enumeration: an unregistered type fails with a
// model.ConfigError, never silently no-ops.
func (r *Registry) Get(t model.NodeType) (Executor, error) {
	e, ok := r.executors[t]
	if !ok {
		return nil, model.ConfigError{Message: fmt.Sprintf("No executor for type %s", t)}
	}
	return e, nil
}
