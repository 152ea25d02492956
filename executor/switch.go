package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/oliveagle/jsonpath"

	"github.com/flowcraft/engine/model"
)

// Brancher is implemented by executors whose effect is choosing an
// outgoing edge rather than (or in addition to) producing a context.
// The runner type-asserts the registered executor against this
// interface to decide whether to consult a branch name when picking the
// next node.
type Brancher interface {
	Branch(ctx context.Context, p Params) (string, error)
}

var _ Executor = new(switchExecutor)
var _ Brancher = new(switchExecutor)

type switchConfig struct {
	Expression string            `json:"expression"`
	Cases      map[string]string `json:"cases"`
}

// switchExecutor evaluates a JSONPath expression against the context and
// routes to the branch named by the stringified result, grounded on the
// reference implementation's switch action. Per the output contract it
// never writes a context key - its only effect is the branch name it
// returns, so it returns the context it was handed, untouched.
type switchExecutor struct{}

func NewSwitchExecutor() *switchExecutor {
	return &switchExecutor{}
}

// Branch runs the switch evaluation and returns the branch name to
// follow. The runner calls this instead of Execute when dispatching a
// SWITCH node, since switches don't merely produce a context - they
// choose the next edge.
func (e *switchExecutor) Branch(ctx context.Context, p Params) (string, error) {
	result, err := p.Step.Run(ctx, stepName(p, "switch-eval"), func() (any, error) {
		return e.evaluate(p.Data, p.Context)
	})
	if err != nil {
		return "", err
	}
	branch, _ := result.(string)
	return branch, nil
}

func (e *switchExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	return CopyContext(p.Context), nil
}

func (e *switchExecutor) evaluate(data map[string]any, context Context) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Switch node: invalid configuration: %v", err)}
	}
	var cfg switchConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Switch node: invalid configuration: %v", err)}
	}
	if cfg.Expression == "" {
		return nil, model.ConfigError{Message: "Switch node: expression is required"}
	}

	value, err := jsonpath.JsonPathLookup(context, cfg.Expression)
	if err != nil {
		return nil, model.ConfigError{Message: fmt.Sprintf("Switch node: expression lookup failed: %v", err)}
	}

	key := stringifyCaseKey(value)
	if branch, ok := cfg.Cases[key]; ok {
		return branch, nil
	}
	if branch, ok := cfg.Cases["default"]; ok {
		return branch, nil
	}
	return nil, model.ConfigError{Message: fmt.Sprintf("Switch node: no case matches %q and no default branch", key)}
}

func stringifyCaseKey(v any) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.Itoa(int(val))
	case float64:
		return strconv.Itoa(int(val))
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
