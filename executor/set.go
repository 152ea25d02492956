package executor

import (
	"context"
	"fmt"

	"github.com/oliveagle/jsonpath"

	"github.com/flowcraft/engine/model"
)

var _ Executor = new(setExecutor)

// setExecutor injects a static or templated map of values into the
// context without calling out, grounded on the reference
// implementation's json-map action and its resolveParams templating.
type setExecutor struct{}

func NewSetExecutor() *setExecutor {
	return &setExecutor{}
}

func (e *setExecutor) Execute(ctx context.Context, p Params) (Context, error) {
	values, _ := p.Data["values"].(map[string]any)

	result, err := p.Step.Run(ctx, stepName(p, "set-values"), func() (any, error) {
		resolved, err := resolveTemplates(values, p.Context)
		if err != nil {
			return nil, model.ConfigError{Message: fmt.Sprintf("Set node: %v", err)}
		}
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}

	resolved, _ := result.(map[string]any)
	out := CopyContext(p.Context)
	for k, v := range resolved {
		out[k] = v
	}
	return out, nil
}

// resolveTemplates walks values depth-first, resolving any string that
// begins with "$" as a JSONPath lookup against context and passing
// everything else through literally.
func resolveTemplates(values map[string]any, context Context) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case map[string]any:
			resolved, err := resolveTemplates(val, context)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		case string:
			if len(val) > 0 && val[0] == '$' {
				looked, err := jsonpath.JsonPathLookup(context, val)
				if err != nil {
					return nil, fmt.Errorf("template %q: %w", val, err)
				}
				out[k] = looked
			} else {
				out[k] = val
			}
		default:
			out[k] = val
		}
	}
	return out, nil
}
