package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/step"
)

func TestSwitchBranchByStringValue(t *testing.T) {
	e := NewSwitchExecutor()
	s := step.New(step.NewMemoryStore(), "exec-1")

	branch, err := e.Branch(context.Background(), Params{
		Data: map[string]any{
			"expression": "$.status",
			"cases":      map[string]any{"ok": "success-branch", "default": "fallback"},
		},
		Context: Context{"status": "ok"},
		Step:    s,
	})
	require.NoError(t, err)
	require.Equal(t, "success-branch", branch)
}

func TestSwitchFallsBackToDefault(t *testing.T) {
	e := NewSwitchExecutor()
	s := step.New(step.NewMemoryStore(), "exec-1")

	branch, err := e.Branch(context.Background(), Params{
		Data: map[string]any{
			"expression": "$.status",
			"cases":      map[string]any{"ok": "success-branch", "default": "fallback"},
		},
		Context: Context{"status": "unexpected"},
		Step:    s,
	})
	require.NoError(t, err)
	require.Equal(t, "fallback", branch)
}

func TestSwitchNoMatchNoDefaultIsConfigError(t *testing.T) {
	e := NewSwitchExecutor()
	s := step.New(step.NewMemoryStore(), "exec-1")

	_, err := e.Branch(context.Background(), Params{
		Data: map[string]any{
			"expression": "$.status",
			"cases":      map[string]any{"ok": "success-branch"},
		},
		Context: Context{"status": "unexpected"},
		Step:    s,
	})
	require.Error(t, err)
	require.False(t, model.IsRetriable(err))
}

func TestSwitchDoesNotWriteContext(t *testing.T) {
	e := NewSwitchExecutor()
	s := step.New(step.NewMemoryStore(), "exec-1")

	out, err := e.Execute(context.Background(), Params{
		Context: Context{"a": 1},
		Step:    s,
	})
	require.NoError(t, err)
	require.Equal(t, Context{"a": 1}, out)
}
