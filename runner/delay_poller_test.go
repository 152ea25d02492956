package runner

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/executor"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/step"
)

func TestDelayPollerResumesDueExecutions(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-delay"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("d", model.NodeTypeDelay, map[string]any{"delaySeconds": 3600}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "d", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	execStore := NewMemoryExecutionStore()
	steps := step.NewMemoryStore()
	r := New(&fakeGraphStore{graph: graph}, execStore, steps, executor.NewRegistry())

	ec, err := r.Trigger(context.Background(), "wf-delay", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionWaitingDelay, ec.State)

	// Rewrite the delay node's checkpointed deadline into the past, as if
	// enough wall-clock time had elapsed - this is what FindDueDelays'
	// caller actually relies on, not ec.ResumeAfter alone.
	past, err := json.Marshal(time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, steps.Put(context.Background(), ec.Id, "d:delay-enter", past))

	ec.ResumeAfter = time.Now().Add(-time.Hour)
	require.NoError(t, execStore.Save(context.Background(), ec))

	poller := NewDelayPoller(r, 1*time.Second, nil)
	poller.pollOnce(r)

	reloaded, err := execStore.Load(context.Background(), ec.Id)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, reloaded.State)
}

type fakeOwnershipChecker struct {
	owns bool
}

func (f fakeOwnershipChecker) OwnsWorkflow(string) bool { return f.owns }

func TestDelayPollerSkipsExecutionsNotOwnedByThisNode(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-delay"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("d", model.NodeTypeDelay, map[string]any{"delaySeconds": 3600}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "d", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	execStore := NewMemoryExecutionStore()
	steps := step.NewMemoryStore()
	r := New(&fakeGraphStore{graph: graph}, execStore, steps, executor.NewRegistry())

	ec, err := r.Trigger(context.Background(), "wf-delay", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionWaitingDelay, ec.State)

	past, err := json.Marshal(time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, steps.Put(context.Background(), ec.Id, "d:delay-enter", past))

	ec.ResumeAfter = time.Now().Add(-time.Hour)
	require.NoError(t, execStore.Save(context.Background(), ec))

	poller := NewDelayPoller(r, 1*time.Second, fakeOwnershipChecker{owns: false})
	poller.pollOnce(r)

	reloaded, err := execStore.Load(context.Background(), ec.Id)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionWaitingDelay, reloaded.State, "execution not owned by this node must not be resumed")
}
