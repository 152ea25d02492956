package redis

import (
	"context"
	"encoding/json"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/google/uuid"

	"github.com/flowcraft/engine/graph"
	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/persistence"
	"go.uber.org/zap"
)

const (
	workflowKey   = "WORKFLOW"
	nodeKey       = "NODE"
	connectionKey = "CONNECTION"
)

var _ persistence.GraphStore = new(GraphDao)

// GraphDao is the Redis-backed implementation of persistence.GraphStore,
// grounded on the reference implementation's metadata/workflow DAOs: a
// JSON-encoded record per workflow plus a per-workflow hash of nodes and
// one of connections, replaced wholesale on save inside a transaction
// pipeline - Redis's analogue of the spec's single database transaction.
type GraphDao struct {
	*baseDao
}

func NewGraphDao(conf Config) *GraphDao {
	return &GraphDao{baseDao: newBaseDao(conf)}
}

// NewGraphDaoWithClient shares an existing connection pool with sibling
// DAOs (step store, execution store) instead of opening a new one.
func NewGraphDaoWithClient(client rd.UniversalClient, namespace string) *GraphDao {
	return &GraphDao{baseDao: newBaseDaoWithClient(client, namespace)}
}

func (g *GraphDao) workflowRecordKey(id string) string { return g.getNamespaceKey(workflowKey, id) }
func (g *GraphDao) nodeSetKey(workflowId string) string {
	return g.getNamespaceKey(nodeKey, workflowId)
}
func (g *GraphDao) connectionSetKey(workflowId string) string {
	return g.getNamespaceKey(connectionKey, workflowId)
}

func (g *GraphDao) CreateWorkflow(name string, ownerId string) (*model.Workflow, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	wf := model.Workflow{
		Id:        uuid.NewString(),
		Name:      name,
		UserId:    ownerId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	initial := model.Node{
		Id:         uuid.NewString(),
		WorkflowId: wf.Id,
		Type:       model.NodeTypeInitial,
		Name:       string(model.NodeTypeInitial),
		Position:   model.Position{X: 0, Y: 0},
		Data:       map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	wfData, err := json.Marshal(wf)
	if err != nil {
		return nil, err
	}
	nodeData, err := json.Marshal(initial)
	if err != nil {
		return nil, err
	}

	pipe := g.redisClient.TxPipeline()
	pipe.Set(ctx, g.workflowRecordKey(wf.Id), wfData, 0)
	pipe.HSet(ctx, g.nodeSetKey(wf.Id), initial.Id, nodeData)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("error creating workflow", zap.String("name", name), zap.Error(err))
		return nil, model.TransientError{Message: "failed to create workflow", Cause: err}
	}
	return &wf, nil
}

func (g *GraphDao) LoadGraph(workflowId string, ownerId string) (*model.Graph, error) {
	ctx := context.Background()
	wf, err := g.loadWorkflow(ctx, workflowId)
	if err != nil {
		return nil, err
	}
	if wf.UserId != ownerId {
		return nil, model.NotFoundError{Message: "workflow " + workflowId}
	}

	nodeFields, err := g.redisClient.HGetAll(ctx, g.nodeSetKey(workflowId)).Result()
	if err != nil {
		return nil, model.TransientError{Message: "failed to load nodes", Cause: err}
	}
	nodes := make([]model.Node, 0, len(nodeFields))
	for _, raw := range nodeFields {
		var n model.Node
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, model.TransientError{Message: "corrupt node record", Cause: err}
		}
		nodes = append(nodes, n)
	}

	connFields, err := g.redisClient.HGetAll(ctx, g.connectionSetKey(workflowId)).Result()
	if err != nil {
		return nil, model.TransientError{Message: "failed to load connections", Cause: err}
	}
	connections := make([]model.Connection, 0, len(connFields))
	for _, raw := range connFields {
		var c model.Connection
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, model.TransientError{Message: "corrupt connection record", Cause: err}
		}
		connections = append(connections, c)
	}

	edges := graph.ToExecutionEdges(connections)
	if err := graph.Validate(nodes, edges); err != nil {
		return nil, err
	}

	return &model.Graph{Workflow: *wf, Nodes: nodes, Edges: edges}, nil
}

func (g *GraphDao) SaveGraph(req model.SaveGraphRequest, ownerId string) (*model.Workflow, error) {
	ctx := context.Background()
	wf, err := g.loadWorkflow(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if wf.UserId != ownerId {
		return nil, model.NotAuthorizedError{Message: "workflow " + req.Id}
	}

	now := time.Now().UTC()
	wf.UpdatedAt = now

	nodeArgs := make([]any, 0, len(req.Nodes)*2)
	for _, n := range req.Nodes {
		name := n.Name
		if name == "" {
			name = string(n.Type)
		}
		stored := model.Node{
			Id:         n.Id,
			WorkflowId: req.Id,
			Type:       n.Type,
			Name:       name,
			Position:   n.Position,
			Data:       n.Data,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		data, err := json.Marshal(stored)
		if err != nil {
			return nil, err
		}
		nodeArgs = append(nodeArgs, n.Id, data)
	}

	connArgs := make([]any, 0, len(req.Edges)*2)
	for _, e := range req.Edges {
		from, to := e.SourceHandle, e.TargetHandle
		if from == "" {
			from = model.DefaultHandle
		}
		if to == "" {
			to = model.DefaultHandle
		}
		conn := model.Connection{
			Id:         uuid.NewString(),
			WorkflowId: req.Id,
			FromNodeId: e.Source,
			ToNodeId:   e.Target,
			FromOutput: from,
			ToInput:    to,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		data, err := json.Marshal(conn)
		if err != nil {
			return nil, err
		}
		connArgs = append(connArgs, conn.Id, data)
	}

	wfData, err := json.Marshal(wf)
	if err != nil {
		return nil, err
	}

	_, err = g.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		// Delete-and-recreate: cascading delete of the prior node and
		// connection sets happens implicitly because both hashes are
		// wholly replaced within the same pipeline.
		pipe.Del(ctx, g.nodeSetKey(req.Id))
		pipe.Del(ctx, g.connectionSetKey(req.Id))
		if len(nodeArgs) > 0 {
			pipe.HSet(ctx, g.nodeSetKey(req.Id), nodeArgs...)
		}
		if len(connArgs) > 0 {
			pipe.HSet(ctx, g.connectionSetKey(req.Id), connArgs...)
		}
		pipe.Set(ctx, g.workflowRecordKey(req.Id), wfData, 0)
		return nil
	})
	if err != nil {
		logger.Error("error saving graph", zap.String("workflowId", req.Id), zap.Error(err))
		return nil, model.TransientError{Message: "failed to save graph", Cause: err}
	}
	return wf, nil
}

func (g *GraphDao) DeleteWorkflow(workflowId string, ownerId string) error {
	ctx := context.Background()
	wf, err := g.loadWorkflow(ctx, workflowId)
	if err != nil {
		return err
	}
	if wf.UserId != ownerId {
		return model.NotAuthorizedError{Message: "workflow " + workflowId}
	}
	_, err = g.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Del(ctx, g.nodeSetKey(workflowId))
		pipe.Del(ctx, g.connectionSetKey(workflowId))
		pipe.Del(ctx, g.workflowRecordKey(workflowId))
		return nil
	})
	if err != nil {
		return model.TransientError{Message: "failed to delete workflow", Cause: err}
	}
	return nil
}

func (g *GraphDao) loadWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	val, err := g.redisClient.Get(ctx, g.workflowRecordKey(id)).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, model.NotFoundError{Message: "workflow " + id}
		}
		return nil, model.TransientError{Message: "failed to load workflow", Cause: err}
	}
	var wf model.Workflow
	if err := json.Unmarshal([]byte(val), &wf); err != nil {
		return nil, model.TransientError{Message: "corrupt workflow record", Cause: err}
	}
	return &wf, nil
}
