package domain

import "context"

// OperationRepository is the abstraction for any kind of database intended to
// persist pending and processed operations.
type OperationRepository interface {
	// AddOperation stores a new pending operation.
	AddOperation(ctx context.Context, op *Operation) error
	// GetOperation returns the pending operation with the given id.
	GetOperation(ctx context.Context, id uint64) (*Operation, error)
	// ListPendingOperations returns the pending operations sorted by id.
	ListPendingOperations(ctx context.Context) ([]*Operation, error)
	// UpdateOperation allows to commit multiple changes to the same pending
	// operation in a transactional way.
	UpdateOperation(
		ctx context.Context, id uint64,
		updateFn func(op *Operation) (*Operation, error),
	) error
	// ProcessOperation removes the pending operation and stores the processed
	// one in a single step.
	ProcessOperation(ctx context.Context, processed *ProcessedOperation) error
	// GetProcessedOperation ...
	GetProcessedOperation(ctx context.Context, id uint64) (*ProcessedOperation, error)
	// ListProcessedOperations returns the processed operations sorted by id.
	ListProcessedOperations(ctx context.Context) ([]*ProcessedOperation, error)
}
