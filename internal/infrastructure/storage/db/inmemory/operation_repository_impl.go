package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

type operationRepositoryImpl struct {
	pending   map[uint64]*domain.Operation
	processed map[uint64]*domain.ProcessedOperation
	locker    *sync.RWMutex
}

// NewOperationRepositoryImpl returns a new inmemory OperationRepository
// implementation.
func NewOperationRepositoryImpl() domain.OperationRepository {
	return &operationRepositoryImpl{
		pending:   make(map[uint64]*domain.Operation),
		processed: make(map[uint64]*domain.ProcessedOperation),
		locker:    &sync.RWMutex{},
	}
}

func (r *operationRepositoryImpl) AddOperation(
	_ context.Context, op *domain.Operation,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.pending[op.ID]; ok {
		return domain.ErrOperationAlreadyExists
	}
	if _, ok := r.processed[op.ID]; ok {
		return domain.ErrOperationAlreadyExists
	}
	r.pending[op.ID] = op.Clone()
	return nil
}

func (r *operationRepositoryImpl) GetOperation(
	_ context.Context, id uint64,
) (*domain.Operation, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	op, ok := r.pending[id]
	if !ok {
		return nil, domain.ErrOperationNotFound
	}
	return op.Clone(), nil
}

func (r *operationRepositoryImpl) ListPendingOperations(
	_ context.Context,
) ([]*domain.Operation, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	ops := make([]*domain.Operation, 0, len(r.pending))
	for _, op := range r.pending {
		ops = append(ops, op.Clone())
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops, nil
}

func (r *operationRepositoryImpl) UpdateOperation(
	_ context.Context, id uint64,
	updateFn func(op *domain.Operation) (*domain.Operation, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	op, ok := r.pending[id]
	if !ok {
		return domain.ErrOperationNotFound
	}
	updatedOp, err := updateFn(op.Clone())
	if err != nil {
		return err
	}
	r.pending[id] = updatedOp.Clone()
	return nil
}

func (r *operationRepositoryImpl) ProcessOperation(
	_ context.Context, processed *domain.ProcessedOperation,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	id := processed.Operation.ID
	if _, ok := r.processed[id]; ok {
		return domain.ErrOperationAlreadyProcessed
	}
	delete(r.pending, id)
	r.processed[id] = copyProcessed(processed)
	return nil
}

func (r *operationRepositoryImpl) GetProcessedOperation(
	_ context.Context, id uint64,
) (*domain.ProcessedOperation, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	processed, ok := r.processed[id]
	if !ok {
		return nil, domain.ErrOperationNotFound
	}
	return copyProcessed(processed), nil
}

func (r *operationRepositoryImpl) ListProcessedOperations(
	_ context.Context,
) ([]*domain.ProcessedOperation, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	list := make([]*domain.ProcessedOperation, 0, len(r.processed))
	for _, p := range r.processed {
		list = append(list, copyProcessed(p))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Operation.ID < list[j].Operation.ID
	})
	return list, nil
}

func copyProcessed(p *domain.ProcessedOperation) *domain.ProcessedOperation {
	cpy := *p
	cpy.Operation = *p.Operation.Clone()
	return &cpy
}
