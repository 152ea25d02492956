package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowcraft/engine/model"
)

var _ Executor = new(delayExecutor)

type delayConfig struct {
	DelaySeconds int `json:"delaySeconds"`
}

// delayExecutor suspends the workflow until a configured duration
// elapses. The wake time is checkpointed once on first entry so that a
// restart mid-delay resumes the original deadline instead of restarting
// the clock; whether to suspend or continue is then decided by comparing
// the checkpointed deadline to the current time, which needs no runner
// cooperation beyond re-invoking the executor after the deadline passes.
type delayExecutor struct{}

func NewDelayExecutor() *delayExecutor {
	return &delayExecutor{}
}

func (e *delayExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	raw, err := json.Marshal(p.Data)
	if err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Delay node: invalid configuration: %v", err)}
	}
	var cfg delayConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Delay node: invalid configuration: %v", err)}
	}
	if cfg.DelaySeconds <= 0 {
		return nil, model.ConfigError{Message: "Delay node: delaySeconds must be greater than zero"}
	}

	result, err := p.Step.Run(ctx, stepName(p, "delay-enter"), func() (any, error) {
		return time.Now().Add(time.Duration(cfg.DelaySeconds) * time.Second).Unix(), nil
	})
	if err != nil {
		return nil, err
	}

	resumeAfter, err := asUnixSeconds(result)
	if err != nil {
		return nil, model.TransientError{Message: "Delay node: corrupt checkpoint", Cause: err}
	}

	if time.Now().Unix() >= resumeAfter {
		return CopyContext(p.Context), nil
	}
	return nil, model.SuspendError{
		Reason:      "delaying until configured time elapses",
		ResumeAfter: resumeAfter,
	}
}

func asUnixSeconds(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected checkpoint value type %T", v)
	}
}
