// Package runner implements the workflow runner (component F): it
// orchestrates the graph model, scheduler, and executor registry into a
// durable, resumable execution of one workflow trigger, and is the only
// component that talks to the durability transport (the step store and
// the execution store).
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowcraft/engine/analytics"
	"github.com/flowcraft/engine/executor"
	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/scheduler"
	"github.com/flowcraft/engine/step"
	"go.uber.org/zap"
)

// GraphStore is the minimal read surface the runner needs from the
// persistence adapter. persistence.GraphStore satisfies this directly.
type GraphStore interface {
	LoadGraph(workflowId string, ownerId string) (*model.Graph, error)
}

// ExecutionStore is the durable home for model.ExecutionContext, backed
// in production by persistence/redis.ExecutionDao.
type ExecutionStore interface {
	Save(ctx context.Context, ec *model.ExecutionContext) error
	Load(ctx context.Context, id string) (*model.ExecutionContext, error)
	Delete(ctx context.Context, ec *model.ExecutionContext) error
	FindWaitingForEvent(ctx context.Context, event string) ([]string, error)
	FindDueDelays(ctx context.Context, now time.Time) ([]string, error)
}

// Registry is the subset of executor.Registry the runner depends on.
type Registry interface {
	Get(t model.NodeType) (executor.Executor, error)
}

// EventRecorder observes per-node outcomes as the runner drives an
// execution. It is optional; a nil recorder on the Runner disables
// recording entirely with no extra branching at call sites. outcome is
// "success" or "failure"; data is set on success, reason on failure.
type EventRecorder interface {
	RecordNodeEvent(workflowId, executionId, nodeId string, nodeType model.NodeType, outcome analytics.Outcome, data map[string]any, reason string)
}

// Runner drives one workflow execution from trigger to completion or
// suspension. It is safe for concurrent use across different execution
// ids; a single execution id must not be driven concurrently.
type Runner struct {
	graphs     GraphStore
	executions ExecutionStore
	steps      step.Store
	registry   Registry
	events     EventRecorder
}

type Option func(*Runner)

// WithEventRecorder attaches an EventRecorder that observes every node's
// success or failure as executions are driven.
func WithEventRecorder(events EventRecorder) Option {
	return func(r *Runner) { r.events = events }
}

func New(graphs GraphStore, executions ExecutionStore, steps step.Store, registry Registry, opts ...Option) *Runner {
	r := &Runner{graphs: graphs, executions: executions, steps: steps, registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type preparedWorkflow struct {
	NodeOrder []string `json:"nodeOrder"`
}

// Trigger starts a new execution of workflowId, owned by ownerId, seeded
// with initialData. It returns the execution record whether the run
// completed, failed, or suspended - the caller inspects ec.State.
func (r *Runner) Trigger(ctx context.Context, workflowId string, ownerId string, initialData map[string]any) (*model.ExecutionContext, error) {
	data := make(map[string]any, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}
	ec := &model.ExecutionContext{
		Id:         uuid.NewString(),
		WorkflowId: workflowId,
		OwnerId:    ownerId,
		Data:       data,
		State:      model.ExecutionRunning,
	}
	return r.drive(ctx, ec, ownerId)
}

// Resume continues a previously parked execution. The caller is
// responsible for having re-delivered the event payload (see
// ResumeWithEvent) before calling Resume on a WAIT-parked execution; a
// DELAY-parked execution can simply be resumed once its deadline has
// passed. callerOwnerId is checked against the execution's recorded
// owner when non-empty; pass "" for internal callers (e.g. DelayPoller)
// that only know the execution id.
func (r *Runner) Resume(ctx context.Context, executionId string, callerOwnerId string) (*model.ExecutionContext, error) {
	ec, err := r.executions.Load(ctx, executionId)
	if err != nil {
		return nil, err
	}
	if callerOwnerId != "" && ec.OwnerId != callerOwnerId {
		return nil, model.NotAuthorizedError{Message: fmt.Sprintf("execution %s is not owned by caller", executionId)}
	}
	return r.drive(ctx, ec, ec.OwnerId)
}

// ResumeWithEvent delivers an external event's payload to a
// WAIT-suspended execution and resumes it. The payload is written
// directly into the step store under the reserved "wait-payload" name,
// bypassing Step.Run, so the wait executor's cached-checkpoint check
// observes it on the very next invocation.
func (r *Runner) ResumeWithEvent(ctx context.Context, executionId string, callerOwnerId string, payload map[string]any) (*model.ExecutionContext, error) {
	ec, err := r.executions.Load(ctx, executionId)
	if err != nil {
		return nil, err
	}
	if callerOwnerId != "" && ec.OwnerId != callerOwnerId {
		return nil, model.NotAuthorizedError{Message: fmt.Sprintf("execution %s is not owned by caller", executionId)}
	}
	if ec.State != model.ExecutionWaitingEvent {
		return nil, model.ConfigError{Message: fmt.Sprintf("execution %s is not waiting for an event", executionId)}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	stepName := ec.WaitNodeId + ":wait-payload"
	if err := r.steps.Put(ctx, executionId, stepName, encoded); err != nil {
		return nil, err
	}
	return r.drive(ctx, ec, ec.OwnerId)
}

func (r *Runner) drive(ctx context.Context, ec *model.ExecutionContext, ownerId string) (*model.ExecutionContext, error) {
	s := step.New(r.steps, ec.Id)

	if len(ec.NodeOrder) == 0 {
		result, err := s.Run(ctx, "prepare-workflow", func() (any, error) {
			g, err := r.graphs.LoadGraph(ec.WorkflowId, ownerId)
			if err != nil {
				return nil, err
			}
			sorted, err := scheduler.Sort(g.Nodes, g.Edges)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(sorted))
			for i, n := range sorted {
				ids[i] = n.Id
			}
			return preparedWorkflow{NodeOrder: ids}, nil
		})
		if err != nil {
			ec.State = model.ExecutionFailed
			r.executions.Save(ctx, ec)
			return ec, err
		}
		ec.NodeOrder = nodeOrderOf(result)
	}

	graph, err := r.graphs.LoadGraph(ec.WorkflowId, ownerId)
	if err != nil {
		return ec, err
	}
	nodesById := make(map[string]model.Node, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodesById[n.Id] = n
	}
	edgesByTarget := make(map[string][]model.Edge)
	for _, e := range graph.Edges {
		edgesByTarget[e.Target] = append(edgesByTarget[e.Target], e)
	}

	// Every drive() pass replays the execution from the start of the
	// sorted order rather than resuming at ec.Cursor. This is safe and
	// cheap because every executor wraps its side effect in exactly one
	// Step.Run keyed by node id: nodes already completed in a prior pass
	// return their checkpointed result instantly instead of re-running.
	// Replaying is also what makes branch skipping correct - a SWITCH
	// node's chosen branch has to be known before deciding whether a
	// downstream node is reachable, and that decision can only be made
	// by walking forward from the beginning each time.
	ec.State = model.ExecutionRunning
	reachable := make(map[string]bool, len(ec.NodeOrder))
	chosenHandle := make(map[string]string, len(ec.NodeOrder))

	for idx, nodeId := range ec.NodeOrder {
		node, ok := nodesById[nodeId]
		if !ok {
			// Node removed from the graph since the order was
			// checkpointed; treat it as unreachable.
			continue
		}

		incoming := edgesByTarget[nodeId]
		reach := len(incoming) == 0
		for _, e := range incoming {
			if !reachable[e.Source] {
				continue
			}
			if branch, isBranch := chosenHandle[e.Source]; isBranch {
				if e.SourceHandle == branch {
					reach = true
					break
				}
				continue
			}
			reach = true
			break
		}
		reachable[nodeId] = reach
		if !reach {
			continue
		}

		exec, err := r.registry.Get(node.Type)
		if err != nil {
			return r.fail(ctx, ec, node.Id, node.Type, err)
		}

		params := executor.Params{
			Data:    node.Data,
			NodeID:  node.Id,
			Context: ec.Data,
			Step:    s,
		}

		if brancher, ok := exec.(executor.Brancher); ok {
			branch, err := brancher.Branch(ctx, params)
			if err != nil {
				return r.suspendOrFail(ctx, ec, node.Id, node.Type, err)
			}
			chosenHandle[node.Id] = branch
			ec.Cursor = idx + 1
			r.recordSuccess(ec, node.Id, node.Type, map[string]any{"branch": branch})
			continue
		}

		out, err := exec.Execute(ctx, params)
		if err != nil {
			return r.suspendOrFail(ctx, ec, node.Id, node.Type, err)
		}
		ec.Data = out
		ec.Cursor = idx + 1
		r.recordSuccess(ec, node.Id, node.Type, out)
	}

	ec.State = model.ExecutionCompleted
	ec.WaitEvent = ""
	ec.WaitNodeId = ""
	if err := r.executions.Save(ctx, ec); err != nil {
		return ec, err
	}
	return ec, nil
}

func (r *Runner) suspendOrFail(ctx context.Context, ec *model.ExecutionContext, nodeId string, nodeType model.NodeType, err error) (*model.ExecutionContext, error) {
	if suspend, ok := err.(model.SuspendError); ok {
		if suspend.WaitEvent != "" {
			ec.State = model.ExecutionWaitingEvent
			ec.WaitEvent = suspend.WaitEvent
			ec.WaitNodeId = nodeId
		} else {
			ec.State = model.ExecutionWaitingDelay
			ec.ResumeAfter = time.Unix(suspend.ResumeAfter, 0).UTC()
		}
		if saveErr := r.executions.Save(ctx, ec); saveErr != nil {
			return ec, saveErr
		}
		return ec, nil
	}
	return r.fail(ctx, ec, nodeId, nodeType, err)
}

func (r *Runner) fail(ctx context.Context, ec *model.ExecutionContext, nodeId string, nodeType model.NodeType, err error) (*model.ExecutionContext, error) {
	if !model.IsRetriable(err) {
		ec.State = model.ExecutionFailed
	}
	r.recordFailure(ec, nodeId, nodeType, err)
	// Retriable failures leave ec.State as Running with the cursor
	// unmoved, so a later Resume (driven by the transport's redelivery)
	// retries the same node instead of skipping it.
	if saveErr := r.executions.Save(ctx, ec); saveErr != nil {
		logger.Error("failed to persist execution after error", zap.String("executionId", ec.Id), zap.Error(saveErr))
	}
	return ec, err
}

func (r *Runner) recordSuccess(ec *model.ExecutionContext, nodeId string, nodeType model.NodeType, data map[string]any) {
	if r.events == nil {
		return
	}
	r.events.RecordNodeEvent(ec.WorkflowId, ec.Id, nodeId, nodeType, analytics.OutcomeSuccess, data, "")
}

func (r *Runner) recordFailure(ec *model.ExecutionContext, nodeId string, nodeType model.NodeType, err error) {
	if r.events == nil {
		return
	}
	r.events.RecordNodeEvent(ec.WorkflowId, ec.Id, nodeId, nodeType, analytics.OutcomeFailure, nil, err.Error())
}

func nodeOrderOf(v any) []string {
	if pw, ok := v.(preparedWorkflow); ok {
		return pw.NodeOrder
	}
	if m, ok := v.(map[string]any); ok {
		if raw, ok := m["nodeOrder"].([]any); ok {
			ids := make([]string, len(raw))
			for i, id := range raw {
				ids[i], _ = id.(string)
			}
			return ids
		}
	}
	return nil
}
