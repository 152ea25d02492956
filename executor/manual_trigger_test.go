package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/step"
)

func TestManualTriggerPassesContextThrough(t *testing.T) {
	store := step.NewMemoryStore()
	s := step.New(store, "exec-1")
	e := NewManualTriggerExecutor()

	out, err := e.Execute(context.Background(), Params{
		Context: Context{"seed": "value"},
		Step:    s,
	})
	require.NoError(t, err)
	require.Equal(t, "value", out["seed"])
}

func TestManualTriggerCheckpointsOnce(t *testing.T) {
	store := step.NewMemoryStore()
	s := step.New(store, "exec-1")
	e := NewManualTriggerExecutor()

	_, err := e.Execute(context.Background(), Params{Context: Context{"a": 1}, Step: s})
	require.NoError(t, err)

	out, err := e.Execute(context.Background(), Params{Context: Context{"a": 2}, Step: s})
	require.NoError(t, err)
	require.EqualValues(t, 1, out["a"])
}
