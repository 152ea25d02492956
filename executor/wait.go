package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowcraft/engine/model"
)

var _ Executor = new(waitExecutor)

type waitConfig struct {
	Event string `json:"event"`
}

// waitExecutor suspends the workflow until an event of the configured
// name is delivered. The checkpoint it runs to obtain the payload,
// "wait-payload", is never populated by this executor itself - only the
// runner's event-delivery path writes it, directly through the step
// Store rather than through Step.Run, once the external event arrives.
// Until that write happens the thunk below runs and returns
// model.SuspendError, which Step.Run propagates uncached; after it, the
// cached payload short-circuits the thunk entirely.
type waitExecutor struct{}

func NewWaitExecutor() *waitExecutor {
	return &waitExecutor{}
}

func (e *waitExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	raw, err := json.Marshal(p.Data)
	if err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Wait node: invalid configuration: %v", err)}
	}
	var cfg waitConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Wait node: invalid configuration: %v", err)}
	}
	if cfg.Event == "" {
		return nil, model.ConfigError{Message: "Wait node: event is required"}
	}

	if _, err := p.Step.Run(ctx, stepName(p, "wait-enter"), func() (any, error) {
		return cfg.Event, nil
	}); err != nil {
		return nil, err
	}

	payload, err := p.Step.Run(ctx, stepName(p, "wait-payload"), func() (any, error) {
		return nil, model.SuspendError{
			Reason:    fmt.Sprintf("waiting for event %q", cfg.Event),
			WaitEvent: cfg.Event,
		}
	})
	if err != nil {
		return nil, err
	}

	out := CopyContext(p.Context)
	out["waitEvent"] = payload
	return out, nil
}
