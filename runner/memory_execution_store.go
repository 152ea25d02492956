package runner

import (
	"context"
	"time"

	"github.com/flowcraft/engine/model"
)

// MemoryExecutionStore is an in-process ExecutionStore used to unit test
// the runner without Redis.
type MemoryExecutionStore struct {
	records map[string]*model.ExecutionContext
}

func NewMemoryExecutionStore() *MemoryExecutionStore {
	return &MemoryExecutionStore{records: make(map[string]*model.ExecutionContext)}
}

func (m *MemoryExecutionStore) Save(_ context.Context, ec *model.ExecutionContext) error {
	copied := *ec
	m.records[ec.Id] = &copied
	return nil
}

func (m *MemoryExecutionStore) Load(_ context.Context, id string) (*model.ExecutionContext, error) {
	ec, ok := m.records[id]
	if !ok {
		return nil, model.NotFoundError{Message: "execution " + id}
	}
	copied := *ec
	return &copied, nil
}

func (m *MemoryExecutionStore) Delete(_ context.Context, ec *model.ExecutionContext) error {
	delete(m.records, ec.Id)
	return nil
}

func (m *MemoryExecutionStore) FindWaitingForEvent(_ context.Context, event string) ([]string, error) {
	var ids []string
	for _, ec := range m.records {
		if ec.State == model.ExecutionWaitingEvent && ec.WaitEvent == event {
			ids = append(ids, ec.Id)
		}
	}
	return ids, nil
}

func (m *MemoryExecutionStore) FindDueDelays(_ context.Context, now time.Time) ([]string, error) {
	var ids []string
	for _, ec := range m.records {
		if ec.State == model.ExecutionWaitingDelay && !ec.ResumeAfter.After(now) {
			ids = append(ids, ec.Id)
		}
	}
	return ids, nil
}
