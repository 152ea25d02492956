package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/executor"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/step"
)

func TestWorkerPoolDrivesTriggerToCompletion(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-pool"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("b", model.NodeTypeSet, map[string]any{"values": map[string]any{"touched": true}}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "b", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	pool := NewWorkerPool(r, 2)
	defer pool.Stop()

	ec, err := pool.Submit("wf-pool", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, ec.State)
	require.Equal(t, true, ec.Data["touched"])
}

func TestWorkerPoolSubmitResume(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-pool-2"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("w", model.NodeTypeWait, map[string]any{"event": "go"}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "w", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	pool := NewWorkerPool(r, 1)
	defer pool.Stop()

	ec, err := pool.Submit("wf-pool-2", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionWaitingEvent, ec.State)

	_, err = r.ResumeWithEvent(context.Background(), ec.Id, "owner-1", map[string]any{"ok": true})
	require.NoError(t, err)

	resumed, err := pool.SubmitResume(ec.Id, "owner-1")
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, resumed.State)
}
