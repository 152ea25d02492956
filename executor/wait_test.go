package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/step"
)

func TestWaitSuspendsOnFirstEntry(t *testing.T) {
	e := NewWaitExecutor()
	store := step.NewMemoryStore()
	s := step.New(store, "exec-1")

	_, err := e.Execute(context.Background(), Params{
		NodeID:  "w",
		Data:    map[string]any{"event": "order.approved"},
		Context: Context{},
		Step:    s,
	})
	require.Error(t, err)
	suspend, ok := err.(model.SuspendError)
	require.True(t, ok)
	require.Equal(t, "order.approved", suspend.WaitEvent)
}

func TestWaitMissingEventIsConfigError(t *testing.T) {
	e := NewWaitExecutor()
	s := step.New(step.NewMemoryStore(), "exec-1")

	_, err := e.Execute(context.Background(), Params{
		Data:    map[string]any{},
		Context: Context{},
		Step:    s,
	})
	require.Error(t, err)
	require.False(t, model.IsRetriable(err))
}

func TestWaitResumesWithDeliveredPayload(t *testing.T) {
	store := step.NewMemoryStore()
	s := step.New(store, "exec-1")
	e := NewWaitExecutor()

	_, err := e.Execute(context.Background(), Params{
		NodeID:  "w",
		Data:    map[string]any{"event": "order.approved"},
		Context: Context{},
		Step:    s,
	})
	require.Error(t, err)

	// Simulate the runner's event-delivery path: it writes the payload
	// directly through the Store, bypassing Step.Run.
	require.NoError(t, store.Put(context.Background(), "exec-1", "w:wait-payload", []byte(`{"approvedBy":"alice"}`)))

	out, err := e.Execute(context.Background(), Params{
		NodeID:  "w",
		Data:    map[string]any{"event": "order.approved"},
		Context: Context{"orderId": "o-1"},
		Step:    s,
	})
	require.NoError(t, err)
	require.Equal(t, "o-1", out["orderId"])
	payload, ok := out["waitEvent"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", payload["approvedBy"])
}
