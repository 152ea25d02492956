package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/util"
)

// OwnershipChecker reports whether the local node is responsible for
// driving a given workflow's executions, satisfied by *cluster.Cluster.
// A nil checker means "owns everything," matching the single-node
// default the runner otherwise behaves as.
type OwnershipChecker interface {
	OwnsWorkflow(workflowId string) bool
}

// DelayPoller periodically resumes DELAY-suspended executions whose
// deadline has passed, standing in for the external transport's
// redelivery on WAIT/retry paths: nothing else would ever re-invoke a
// parked DELAY node. Built on the reference implementation's
// util.TickWorker.
//
// Unlike Trigger/Resume calls arriving over HTTP, which land on
// whichever node received the request, the poller runs on every node
// in a cluster independently. It is gated on cluster ownership so that,
// with clustering enabled, only the partition owner resumes a given
// execution instead of every node racing to resume it at once.
type DelayPoller struct {
	worker  *util.TickWorker
	wg      *sync.WaitGroup
	stop    chan struct{}
	cluster OwnershipChecker
}

// NewDelayPoller polls runner's execution store every interval for due
// delays and resumes each one it owns, using the execution's own
// recorded OwnerId rather than requiring the caller to supply one.
// cluster may be nil, in which case every due execution is resumed
// (the single-node behavior).
func NewDelayPoller(runner *Runner, interval time.Duration, cluster OwnershipChecker) *DelayPoller {
	wg := &sync.WaitGroup{}
	stop := make(chan struct{})
	dp := &DelayPoller{wg: wg, stop: stop, cluster: cluster}
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	dp.worker = util.NewTickWorker("delay-poller", seconds, stop, func() {
		dp.pollOnce(runner)
	}, wg)
	return dp
}

func (dp *DelayPoller) pollOnce(runner *Runner) {
	ctx := context.Background()
	due, err := runner.executions.FindDueDelays(ctx, time.Now())
	if err != nil {
		logger.Error("delay poll failed", zap.Error(err))
		return
	}
	for _, executionId := range due {
		ec, err := runner.executions.Load(ctx, executionId)
		if err != nil {
			logger.Error("delay load failed", zap.String("executionId", executionId), zap.Error(err))
			continue
		}
		if dp.cluster != nil && !dp.cluster.OwnsWorkflow(ec.WorkflowId) {
			continue
		}
		if _, err := runner.Resume(ctx, executionId, ""); err != nil {
			logger.Error("delay resume failed", zap.String("executionId", executionId), zap.Error(err))
		}
	}
}

func (dp *DelayPoller) Start() {
	dp.worker.Start()
}

func (dp *DelayPoller) Stop() {
	dp.worker.Stop()
	dp.wg.Wait()
}
