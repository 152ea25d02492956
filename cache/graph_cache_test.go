package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/model"
)

type fakeGraphStore struct {
	loads int
	graph model.Graph
}

func (f *fakeGraphStore) CreateWorkflow(name string, ownerId string) (*model.Workflow, error) {
	return &model.Workflow{Id: "wf-1", Name: name, UserId: ownerId}, nil
}

func (f *fakeGraphStore) LoadGraph(workflowId string, ownerId string) (*model.Graph, error) {
	f.loads++
	g := f.graph
	return &g, nil
}

func (f *fakeGraphStore) SaveGraph(req model.SaveGraphRequest, ownerId string) (*model.Workflow, error) {
	return &model.Workflow{Id: req.Id, UserId: ownerId}, nil
}

func (f *fakeGraphStore) DeleteWorkflow(workflowId string, ownerId string) error {
	return nil
}

func TestGraphCacheServesRepeatedLoadsFromCache(t *testing.T) {
	backing := &fakeGraphStore{graph: model.Graph{Workflow: model.Workflow{Id: "wf-1"}}}
	gc := NewGraphCache(backing, time.Minute)

	_, err := gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)
	_, err = gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)

	require.Equal(t, 1, backing.loads)
}

func TestGraphCacheIsolatesByOwner(t *testing.T) {
	backing := &fakeGraphStore{graph: model.Graph{Workflow: model.Workflow{Id: "wf-1"}}}
	gc := NewGraphCache(backing, time.Minute)

	_, err := gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)
	_, err = gc.LoadGraph("wf-1", "owner-2")
	require.NoError(t, err)

	require.Equal(t, 2, backing.loads)
}

func TestGraphCacheInvalidatesOnSave(t *testing.T) {
	backing := &fakeGraphStore{graph: model.Graph{Workflow: model.Workflow{Id: "wf-1"}}}
	gc := NewGraphCache(backing, time.Minute)

	_, err := gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)

	_, err = gc.SaveGraph(model.SaveGraphRequest{Id: "wf-1"}, "owner-1")
	require.NoError(t, err)

	_, err = gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)

	require.Equal(t, 2, backing.loads)
}

func TestGraphCacheInvalidatesOnDelete(t *testing.T) {
	backing := &fakeGraphStore{graph: model.Graph{Workflow: model.Workflow{Id: "wf-1"}}}
	gc := NewGraphCache(backing, time.Minute)

	_, err := gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)

	require.NoError(t, gc.DeleteWorkflow("wf-1", "owner-1"))

	_, err = gc.LoadGraph("wf-1", "owner-1")
	require.NoError(t, err)

	require.Equal(t, 2, backing.loads)
}
