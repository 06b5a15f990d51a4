package dbbadger

import (
	"context"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type operationRepositoryImpl struct {
	store *badgerhold.Store
	lock  *sync.Mutex
}

// NewOperationRepositoryImpl returns an OperationRepository backed by the
// given badgerhold store. Pending and processed operations are kept under
// the same numeric key in two different buckets.
func NewOperationRepositoryImpl(store *badgerhold.Store) domain.OperationRepository {
	return &operationRepositoryImpl{store, &sync.Mutex{}}
}

func (r *operationRepositoryImpl) AddOperation(
	_ context.Context, op *domain.Operation,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var processed domain.ProcessedOperation
		err := r.store.TxGet(tx, op.ID, &processed)
		if err == nil {
			return domain.ErrOperationAlreadyExists
		}
		if err != badgerhold.ErrNotFound {
			return err
		}

		if err := r.store.TxInsert(tx, op.ID, *op); err != nil {
			if err == badgerhold.ErrKeyExists {
				return domain.ErrOperationAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r *operationRepositoryImpl) GetOperation(
	_ context.Context, id uint64,
) (*domain.Operation, error) {
	var op domain.Operation
	if err := r.store.Get(id, &op); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (r *operationRepositoryImpl) ListPendingOperations(
	_ context.Context,
) ([]*domain.Operation, error) {
	var ops []domain.Operation
	if err := r.store.Find(&ops, nil); err != nil {
		return nil, err
	}

	list := make([]*domain.Operation, 0, len(ops))
	for i := range ops {
		list = append(list, &ops[i])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *operationRepositoryImpl) UpdateOperation(
	_ context.Context, id uint64,
	updateFn func(op *domain.Operation) (*domain.Operation, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var op domain.Operation
		if err := r.store.TxGet(tx, id, &op); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrOperationNotFound
			}
			return err
		}

		updatedOp, err := updateFn(&op)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, *updatedOp)
	})
}

// ProcessOperation deletes the pending operation, if still there, and
// inserts the processed one in the same transaction.
func (r *operationRepositoryImpl) ProcessOperation(
	_ context.Context, processed *domain.ProcessedOperation,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	id := processed.Operation.ID
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxDelete(tx, id, domain.Operation{}); err != nil {
			if err != badgerhold.ErrNotFound {
				return err
			}
		}
		if err := r.store.TxInsert(tx, id, *processed); err != nil {
			if err == badgerhold.ErrKeyExists {
				return domain.ErrOperationAlreadyProcessed
			}
			return err
		}
		return nil
	})
}

func (r *operationRepositoryImpl) GetProcessedOperation(
	_ context.Context, id uint64,
) (*domain.ProcessedOperation, error) {
	var processed domain.ProcessedOperation
	if err := r.store.Get(id, &processed); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return &processed, nil
}

func (r *operationRepositoryImpl) ListProcessedOperations(
	_ context.Context,
) ([]*domain.ProcessedOperation, error) {
	var processed []domain.ProcessedOperation
	if err := r.store.Find(&processed, nil); err != nil {
		return nil, err
	}

	list := make([]*domain.ProcessedOperation, 0, len(processed))
	for i := range processed {
		list = append(list, &processed[i])
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Operation.ID < list[j].Operation.ID
	})
	return list, nil
}
