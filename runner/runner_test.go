package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/executor"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/step"
)

type fakeGraphStore struct {
	graph *model.Graph
}

func (f *fakeGraphStore) LoadGraph(workflowId string, ownerId string) (*model.Graph, error) {
	if f.graph == nil || f.graph.Workflow.Id != workflowId {
		return nil, model.NotFoundError{Message: "workflow " + workflowId}
	}
	return f.graph, nil
}

func node(id string, t model.NodeType, data map[string]any) model.Node {
	return model.Node{Id: id, Type: t, Name: string(t), Data: data}
}

func TestRunnerExecutesLinearWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-1"},
		Nodes: []model.Node{
			node("trigger", model.NodeTypeManualTrigger, nil),
			node("http", model.NodeTypeHttpRequest, map[string]any{"endpoint": srv.URL}),
		},
		Edges: []model.Edge{
			{Source: "trigger", Target: "http", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}

	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	ec, err := r.Trigger(context.Background(), "wf-1", "owner-1", map[string]any{"seed": "x"})
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, ec.State)
	resp, ok := ec.Data["httpResponse"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, http.StatusOK, resp["status"])
}

func TestRunnerNonRetriableConfigErrorFailsExecution(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-2"},
		Nodes: []model.Node{
			node("http", model.NodeTypeHttpRequest, map[string]any{}),
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	ec, err := r.Trigger(context.Background(), "wf-2", "owner-1", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "No endpoint configured")
	require.False(t, model.IsRetriable(err))
	require.Equal(t, model.ExecutionFailed, ec.State)
}

func TestRunnerIsolatedNodeStillExecutes(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-3"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("b", model.NodeTypeSet, map[string]any{"values": map[string]any{"touchedB": true}}),
			node("c", model.NodeTypeSet, map[string]any{"values": map[string]any{"touchedC": true}}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "b", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	ec, err := r.Trigger(context.Background(), "wf-3", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, ec.State)
	require.Equal(t, true, ec.Data["touchedB"])
	require.Equal(t, true, ec.Data["touchedC"])
}

func TestRunnerSwitchFollowsSelectedBranch(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-4"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("s", model.NodeTypeSwitch, map[string]any{
				"expression": "$.status",
				"cases":      map[string]any{"ok": "go-ok", "default": "go-default"},
			}),
			node("ok-node", model.NodeTypeSet, map[string]any{"values": map[string]any{"path": "ok"}}),
			node("fallback-node", model.NodeTypeSet, map[string]any{"values": map[string]any{"path": "fallback"}}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "s", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
			{Source: "s", Target: "ok-node", SourceHandle: "go-ok", TargetHandle: model.DefaultHandle},
			{Source: "s", Target: "fallback-node", SourceHandle: "go-default", TargetHandle: model.DefaultHandle},
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	ec, err := r.Trigger(context.Background(), "wf-4", "owner-1", map[string]any{"status": "ok"})
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, ec.State)
	require.Equal(t, "ok", ec.Data["path"])
}

func TestRunnerWaitSuspendsAndResumesWithEvent(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-5"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("w", model.NodeTypeWait, map[string]any{"event": "approved"}),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "w", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	store := NewMemoryExecutionStore()
	r := New(&fakeGraphStore{graph: graph}, store, step.NewMemoryStore(), executor.NewRegistry())

	ec, err := r.Trigger(context.Background(), "wf-5", "owner-1", nil)
	require.NoError(t, err)
	require.Equal(t, model.ExecutionWaitingEvent, ec.State)
	require.Equal(t, "approved", ec.WaitEvent)

	resumed, err := r.ResumeWithEvent(context.Background(), ec.Id, "owner-1", map[string]any{"approvedBy": "alice"})
	require.NoError(t, err)
	require.Equal(t, model.ExecutionCompleted, resumed.State)
	payload, ok := resumed.Data["waitEvent"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", payload["approvedBy"])
}

func TestRunnerCycleFailsBeforeExecution(t *testing.T) {
	graph := &model.Graph{
		Workflow: model.Workflow{Id: "wf-6"},
		Nodes: []model.Node{
			node("a", model.NodeTypeManualTrigger, nil),
			node("b", model.NodeTypeSet, nil),
		},
		Edges: []model.Edge{
			{Source: "a", Target: "b", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
			{Source: "b", Target: "a", SourceHandle: model.DefaultHandle, TargetHandle: model.DefaultHandle},
		},
	}
	r := New(&fakeGraphStore{graph: graph}, NewMemoryExecutionStore(), step.NewMemoryStore(), executor.NewRegistry())
	ec, err := r.Trigger(context.Background(), "wf-6", "owner-1", nil)
	require.Error(t, err)
	require.IsType(t, model.CycleError{}, err)
	require.Equal(t, model.ExecutionFailed, ec.State)
}
