package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	rd "github.com/redis/go-redis/v9"

	"github.com/flowcraft/engine/model"
)

const (
	executionKey  = "EXECUTION"
	waitEventKey  = "WAITEVENT"
	delayQueueKey = "DELAYQUEUE"
)

// ExecutionDao is the durable home of model.ExecutionContext: the record
// the runner checkpoints at every suspend point. Beyond the plain
// get/put, it keeps two lookup structures so the runner can find parked
// executions without scanning every key: a set per wait event name (for
// WAIT nodes) and a sorted set ordered by resume time (for DELAY nodes),
// mirroring the reference implementation's delay-queue-as-sorted-set
// idiom.
type ExecutionDao struct {
	*baseDao
}

func NewExecutionDao(conf Config) *ExecutionDao {
	return &ExecutionDao{baseDao: newBaseDao(conf)}
}

func NewExecutionDaoWithClient(client rd.UniversalClient, namespace string) *ExecutionDao {
	return &ExecutionDao{baseDao: newBaseDaoWithClient(client, namespace)}
}

func (e *ExecutionDao) recordKey(id string) string { return e.getNamespaceKey(executionKey, id) }
func (e *ExecutionDao) waitSetKey(event string) string {
	return e.getNamespaceKey(waitEventKey, event)
}
func (e *ExecutionDao) delaySetKey() string { return e.getNamespaceKey(delayQueueKey) }

// Save persists the execution record and updates the wait-event or
// delay-queue index to match its current state, clearing the other.
func (e *ExecutionDao) Save(ctx context.Context, ec *model.ExecutionContext) error {
	data, err := json.Marshal(ec)
	if err != nil {
		return err
	}

	var staleWaitEvent string
	if prev, loadErr := e.Load(ctx, ec.Id); loadErr == nil && prev.WaitEvent != "" &&
		(ec.State != model.ExecutionWaitingEvent || prev.WaitEvent != ec.WaitEvent) {
		staleWaitEvent = prev.WaitEvent
	}

	_, err = e.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, e.recordKey(ec.Id), data, 0)
		pipe.ZRem(ctx, e.delaySetKey(), ec.Id)
		if staleWaitEvent != "" {
			pipe.SRem(ctx, e.waitSetKey(staleWaitEvent), ec.Id)
		}

		switch ec.State {
		case model.ExecutionWaitingEvent:
			pipe.SAdd(ctx, e.waitSetKey(ec.WaitEvent), ec.Id)
		case model.ExecutionWaitingDelay:
			pipe.ZAdd(ctx, e.delaySetKey(), rd.Z{Score: float64(ec.ResumeAfter.Unix()), Member: ec.Id})
		}
		return nil
	})
	return err
}

func (e *ExecutionDao) Load(ctx context.Context, id string) (*model.ExecutionContext, error) {
	val, err := e.redisClient.Get(ctx, e.recordKey(id)).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, model.NotFoundError{Message: "execution " + id}
		}
		return nil, err
	}
	var ec model.ExecutionContext
	if err := json.Unmarshal([]byte(val), &ec); err != nil {
		return nil, err
	}
	return &ec, nil
}

// Delete removes the execution record and clears it from both indexes.
func (e *ExecutionDao) Delete(ctx context.Context, ec *model.ExecutionContext) error {
	_, err := e.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Del(ctx, e.recordKey(ec.Id))
		pipe.ZRem(ctx, e.delaySetKey(), ec.Id)
		if ec.WaitEvent != "" {
			pipe.SRem(ctx, e.waitSetKey(ec.WaitEvent), ec.Id)
		}
		return nil
	})
	return err
}

// FindWaitingForEvent returns the ids of executions parked on a WAIT node
// for the given event name.
func (e *ExecutionDao) FindWaitingForEvent(ctx context.Context, event string) ([]string, error) {
	return e.redisClient.SMembers(ctx, e.waitSetKey(event)).Result()
}

// FindDueDelays returns the ids of executions whose DELAY resume time has
// elapsed as of now.
func (e *ExecutionDao) FindDueDelays(ctx context.Context, now time.Time) ([]string, error) {
	return e.redisClient.ZRangeByScore(ctx, e.delaySetKey(), &rd.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}
