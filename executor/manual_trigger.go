package executor

import "context"

var _ Executor = new(manualTriggerExecutor)

// manualTriggerExecutor backs both MANUAL_TRIGGER and INITIAL: the
// workflow entry point has no inbound data to merge, so it simply
// checkpoints that it ran and passes the seeded context through
// unchanged. The checkpoint matters on its own: without it, a restart
// after the trigger fired would re-observe the trigger event.
type manualTriggerExecutor struct{}

func NewManualTriggerExecutor() *manualTriggerExecutor {
	return &manualTriggerExecutor{}
}

func (e *manualTriggerExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	result, err := p.Step.Run(ctx, stepName(p, "manual-trigger"), func() (any, error) {
		return CopyContext(p.Context), nil
	})
	if err != nil {
		return nil, err
	}
	return contextOf(result, p.Context), nil
}

// contextOf recovers a Context from a step result that has round-tripped
// through JSON on a cache hit (map[string]any survives unmarshal as-is,
// but the step store's encoding/json.Unmarshal into `any` always yields
// exactly that shape for an object).
func contextOf(v any, fallback Context) Context {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return CopyContext(fallback)
}
