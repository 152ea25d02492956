// Package step implements the durable step primitive described in the
// executor contract: a thunk keyed by (executionId, name) that runs at
// most once across process restarts, with its result checkpointed by a
// Store so a resumed execution replays the cached value instead of the
// side effect.
package step

import (
	"context"
	"encoding/json"
)

// Store is the durability boundary the Runner depends on. The production
// implementation is Redis-backed (see persistence/redis/step_dao.go); tests use the
// in-memory fake in step/memory.go.
type Store interface {
	// Get returns the previously recorded result for (executionId, name),
	// and whether one exists.
	Get(ctx context.Context, executionId, name string) (json.RawMessage, bool, error)
	// Put records the result for (executionId, name). Put MUST be
	// idempotent: recording the same name twice with the same value is not
	// an error.
	Put(ctx context.Context, executionId, name string, value json.RawMessage) error
}

// Step is the primitive handed to every executor invocation.
type Step interface {
	Run(ctx context.Context, name string, thunk func() (any, error)) (any, error)
}

type step struct {
	store       Store
	executionId string
}

// New builds a Step bound to one execution id, backed by store.
func New(store Store, executionId string) Step {
	return &step{store: store, executionId: executionId}
}

func (s *step) Run(ctx context.Context, name string, thunk func() (any, error)) (any, error) {
	if cached, ok, err := s.store.Get(ctx, s.executionId, name); err != nil {
		return nil, err
	} else if ok {
		var v any
		if err := json.Unmarshal(cached, &v); err != nil {
			return nil, err
		}
		return v, nil
	}

	v, err := thunk()
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, s.executionId, name, encoded); err != nil {
		return nil, err
	}
	return v, nil
}
