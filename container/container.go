// Package container is the engine's dependency-injection root: it wires
// persistence, caching, the executor registry, the runner, and the
// optional cluster extension from a config.Config, mirroring the
// reference implementation's DIContiner but built around this engine's
// component set instead of the task-queue one.
package container

import (
	"time"

	"github.com/flowcraft/engine/analytics"
	"github.com/flowcraft/engine/cache"
	"github.com/flowcraft/engine/cluster"
	"github.com/flowcraft/engine/config"
	"github.com/flowcraft/engine/executor"
	"github.com/flowcraft/engine/logger"
	rd "github.com/flowcraft/engine/persistence/redis"
	"github.com/flowcraft/engine/runner"
	"go.uber.org/zap"
)

// Container holds every long-lived component the HTTP API and worker
// pool depend on.
type Container struct {
	conf config.Config

	Graphs     *cache.GraphCache
	Steps      *rd.StepDao
	Executions *rd.ExecutionDao
	Registry   *executor.Registry
	Runner     *runner.Runner
	Pool       *runner.WorkerPool
	Delays     *runner.DelayPoller
	Cluster    *cluster.Cluster
}

// New builds a Container from conf. It opens one shared Redis connection
// pool for the graph, step, and execution DAOs rather than one per DAO,
// starts the delay poller, and - when conf.Cluster.Enabled - joins
// cluster membership.
func New(conf config.Config) (*Container, error) {
	redisConf := rd.Config{Addrs: conf.RedisConfig.Addrs, Namespace: conf.RedisConfig.Namespace}
	client := rd.NewUniversalClient(redisConf)

	graphDao := rd.NewGraphDaoWithClient(client, conf.RedisConfig.Namespace)
	stepDao := rd.NewStepDaoWithClient(client, conf.RedisConfig.Namespace)
	execDao := rd.NewExecutionDaoWithClient(client, conf.RedisConfig.Namespace)

	graphCache := cache.NewGraphCache(graphDao, conf.GraphCacheTTL)
	registry := executor.NewRegistry()

	var runnerOpts []runner.Option
	if conf.AuditLogPath != "" {
		recorder, err := analytics.NewLogFileDataCollector(conf.AuditLogPath)
		if err != nil {
			return nil, err
		}
		runnerOpts = append(runnerOpts, runner.WithEventRecorder(recorder))
	} else {
		logger.Info("audit log disabled", zap.String("reason", "no audit-log-path configured"))
	}

	r := runner.New(graphCache, execDao, stepDao, registry, runnerOpts...)
	pool := runner.NewWorkerPool(r, conf.ExecutorCapacity)

	cl, err := cluster.NewCluster(cluster.Config{
		Enabled:        conf.Cluster.Enabled,
		NodeName:       conf.Cluster.NodeName,
		BindAddr:       conf.Cluster.BindAddr,
		StartJoinAddrs: conf.Cluster.StartJoinAddrs,
		PartitionCount: conf.Cluster.PartitionCount,
	})
	if err != nil {
		return nil, err
	}

	pollInterval := conf.DelayPollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	// The delay poller is the one dispatch path with no external caller
	// to pin it to a node, so it is the one gated on partition
	// ownership: without this, every node in the cluster would resume
	// the same due DELAY execution concurrently. Triggers
	// and event-delivery resumes arrive over HTTP, already addressed to
	// whichever node received the request, and are not re-routed here -
	// see DESIGN.md.
	delays := runner.NewDelayPoller(r, pollInterval, cl)
	delays.Start()

	return &Container{
		conf:       conf,
		Graphs:     graphCache,
		Steps:      stepDao,
		Executions: execDao,
		Registry:   registry,
		Runner:     r,
		Pool:       pool,
		Delays:     delays,
		Cluster:    cl,
	}, nil
}

// Shutdown stops the delay poller, worker pool, and cluster membership.
// It does not close the Redis client: go-redis connections are returned
// to the pool on their own and closing mid-request would race in-flight
// calls.
func (c *Container) Shutdown() {
	c.Delays.Stop()
	c.Pool.Stop()
	_ = c.Cluster.Stop()
}
