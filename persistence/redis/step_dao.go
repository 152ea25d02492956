package redis

import (
	"context"
	"encoding/json"

	rd "github.com/redis/go-redis/v9"

	"github.com/flowcraft/engine/step"
)

const stepKey = "STEP"

var _ step.Store = new(StepDao)

// StepDao is the Redis-backed step.Store: one hash per execution, keyed by
// step name, holding the JSON-encoded checkpointed result. Grounded on the
// same HSet-per-collection idiom as GraphDao's node and connection sets.
type StepDao struct {
	*baseDao
}

func NewStepDao(conf Config) *StepDao {
	return &StepDao{baseDao: newBaseDao(conf)}
}

// NewStepDaoWithClient shares a connection pool already built for another
// DAO instead of opening a second one against the same Redis deployment.
func NewStepDaoWithClient(client rd.UniversalClient, namespace string) *StepDao {
	return &StepDao{baseDao: newBaseDaoWithClient(client, namespace)}
}

func (s *StepDao) stepSetKey(executionId string) string {
	return s.getNamespaceKey(stepKey, executionId)
}

func (s *StepDao) Get(ctx context.Context, executionId, name string) (json.RawMessage, bool, error) {
	val, err := s.redisClient.HGet(ctx, s.stepSetKey(executionId), name).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return json.RawMessage(val), true, nil
}

func (s *StepDao) Put(ctx context.Context, executionId, name string, value json.RawMessage) error {
	return s.redisClient.HSet(ctx, s.stepSetKey(executionId), name, []byte(value)).Err()
}
