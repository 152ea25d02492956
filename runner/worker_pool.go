package runner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/model"
	"github.com/flowcraft/engine/util"
)

// triggerTask is the unit of work the worker pool dispatches: either a
// fresh Trigger or a Resume, carrying its own owner id and a channel to
// report back on since util.Worker's handler signature doesn't return a
// value.
type triggerTask struct {
	kind        taskKind
	workflowId  string
	executionId string
	ownerId     string
	initialData map[string]any
	result      chan<- taskResult
}

type taskKind int

const (
	taskTrigger taskKind = iota
	taskResume
)

type taskResult struct {
	ec  *model.ExecutionContext
	err error
}

// WorkerPool bounds concurrent trigger/resume dispatch to a fixed
// capacity, mirroring the reference implementation's action-executor
// worker pool (util.Worker) generalized to run whole executions instead
// of single actions.
//
// It does not consult cluster partition ownership: Submit/SubmitResume
// run whatever is handed to them on the node that received the HTTP
// request, and this engine does not forward a request to the owning
// node when it lands elsewhere. Only the background DelayPoller, which
// has no request to pin it to a node, is gated on ownership - see
// DESIGN.md.
type WorkerPool struct {
	runner *Runner
	worker *util.Worker
	wg     *sync.WaitGroup
}

// NewWorkerPool starts capacity concurrent goroutines consuming trigger
// and resume requests destined for runner.
func NewWorkerPool(runner *Runner, capacity int) *WorkerPool {
	if capacity <= 0 {
		capacity = 1
	}
	wg := &sync.WaitGroup{}
	wp := &WorkerPool{runner: runner, wg: wg}
	wp.worker = util.NewWorker("runner-pool", wg, wp.handle, capacity)
	wp.worker.Start()
	return wp
}

func (wp *WorkerPool) handle(task util.Task) error {
	t, ok := task.(triggerTask)
	if !ok {
		return nil
	}
	var ec *model.ExecutionContext
	var err error
	switch t.kind {
	case taskTrigger:
		ec, err = wp.runner.Trigger(context.Background(), t.workflowId, t.ownerId, t.initialData)
	case taskResume:
		ec, err = wp.runner.Resume(context.Background(), t.executionId, t.ownerId)
	}
	if err != nil {
		logger.Error("execution task failed", zap.Error(err))
	}
	t.result <- taskResult{ec: ec, err: err}
	return err
}

// Submit enqueues a trigger and blocks until a worker has driven it to
// completion, suspension, or failure.
func (wp *WorkerPool) Submit(workflowId, ownerId string, initialData map[string]any) (*model.ExecutionContext, error) {
	result := make(chan taskResult, 1)
	wp.worker.Sender() <- triggerTask{kind: taskTrigger, workflowId: workflowId, ownerId: ownerId, initialData: initialData, result: result}
	r := <-result
	return r.ec, r.err
}

// SubmitResume enqueues a resume of an already-triggered execution.
func (wp *WorkerPool) SubmitResume(executionId, ownerId string) (*model.ExecutionContext, error) {
	result := make(chan taskResult, 1)
	wp.worker.Sender() <- triggerTask{kind: taskResume, executionId: executionId, ownerId: ownerId, result: result}
	r := <-result
	return r.ec, r.err
}

func (wp *WorkerPool) Stop() {
	wp.worker.Stop()
	wp.wg.Wait()
}
