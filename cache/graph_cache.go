// Package cache provides the execution cache (component I): a short-TTL
// in-memory cache fronting graph loads within a single scheduler pass, so
// a run that touches the same workflow's graph repeatedly (the runner
// reloads it on every drive() pass) does not round-trip to Redis each
// time. It is never the system of record - persistence/redis.GraphDao is
// - and is invalidated on every save, grounded on the reference
// implementation's FlowStateCache use of patrickmn/go-cache.
package cache

import (
	"time"

	c "github.com/patrickmn/go-cache"

	"github.com/flowcraft/engine/model"
)

// DefaultTTL is how long a cached graph is trusted before the cache
// forces a reload from the backing store.
const DefaultTTL = 5 * time.Second

// GraphStore is the subset of persistence.GraphStore that GraphCache
// wraps. Kept narrow so the cache can decorate any adapter, not just the
// Redis one.
type GraphStore interface {
	CreateWorkflow(name string, ownerId string) (*model.Workflow, error)
	LoadGraph(workflowId string, ownerId string) (*model.Graph, error)
	SaveGraph(req model.SaveGraphRequest, ownerId string) (*model.Workflow, error)
	DeleteWorkflow(workflowId string, ownerId string) error
}

// GraphCache decorates a GraphStore with a short-TTL read-through cache
// on LoadGraph, keyed by workflowId+ownerId so one user's cached entry
// never leaks to another. Every SaveGraph or DeleteWorkflow evicts the
// entry immediately rather than waiting out the TTL.
type GraphCache struct {
	backing GraphStore
	cache   *c.Cache
}

// NewGraphCache wraps backing with a cache using the given TTL. A TTL of
// zero falls back to DefaultTTL.
func NewGraphCache(backing GraphStore, ttl time.Duration) *GraphCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &GraphCache{
		backing: backing,
		cache:   c.New(ttl, 2*ttl),
	}
}

var _ GraphStore = new(GraphCache)

func (gc *GraphCache) cacheKey(workflowId, ownerId string) string {
	return ownerId + ":" + workflowId
}

func (gc *GraphCache) CreateWorkflow(name string, ownerId string) (*model.Workflow, error) {
	return gc.backing.CreateWorkflow(name, ownerId)
}

func (gc *GraphCache) LoadGraph(workflowId string, ownerId string) (*model.Graph, error) {
	key := gc.cacheKey(workflowId, ownerId)
	if cached, found := gc.cache.Get(key); found {
		g := cached.(model.Graph)
		return &g, nil
	}
	g, err := gc.backing.LoadGraph(workflowId, ownerId)
	if err != nil {
		return nil, err
	}
	gc.cache.SetDefault(key, *g)
	return g, nil
}

func (gc *GraphCache) SaveGraph(req model.SaveGraphRequest, ownerId string) (*model.Workflow, error) {
	wf, err := gc.backing.SaveGraph(req, ownerId)
	if err != nil {
		return nil, err
	}
	gc.cache.Delete(gc.cacheKey(req.Id, ownerId))
	return wf, nil
}

func (gc *GraphCache) DeleteWorkflow(workflowId string, ownerId string) error {
	if err := gc.backing.DeleteWorkflow(workflowId, ownerId); err != nil {
		return err
	}
	gc.cache.Delete(gc.cacheKey(workflowId, ownerId))
	return nil
}
