package application

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

// OperationService drives the approval workflow of privileged operations:
// signers propose, the allowed ones respond, and confirmed operations are
// executed exactly once.
type OperationService interface {
	Propose(
		ctx context.Context, proposer string, payload domain.Payload,
		reason string, deadline time.Time,
	) (*domain.Operation, error)
	Respond(
		ctx context.Context, id uint64, signer string, approve bool,
	) (*domain.Operation, *domain.ProcessedOperation, error)
	Execute(ctx context.Context, id uint64) (*domain.ProcessedOperation, error)
	ProcessExpired(ctx context.Context) ([]*domain.ProcessedOperation, error)
	GetOperation(ctx context.Context, id uint64) (*domain.Operation, error)
	ListOperations(ctx context.Context) ([]*domain.Operation, error)
	GetProcessedOperation(
		ctx context.Context, id uint64,
	) (*domain.ProcessedOperation, error)
	ListProcessedOperations(ctx context.Context) ([]*domain.ProcessedOperation, error)
}

type operationService struct {
	repoManager ports.RepoManager
	accounts    AccountService
	pubsub      ports.PubSub
	expiry      time.Duration
	now         func() time.Time

	executing sync.Map
}

// NewOperationService returns a service proposing operations with the given
// default expiry. A nil clock defaults to time.Now, pubsub is optional.
func NewOperationService(
	repoManager ports.RepoManager,
	accounts AccountService,
	pubsub ports.PubSub,
	expiry time.Duration,
	clock func() time.Time,
) (OperationService, error) {
	if repoManager == nil || accounts == nil {
		return nil, ErrMissingCollaborator
	}
	if expiry <= 0 {
		expiry = DefaultOperationExpiry
	}
	if clock == nil {
		clock = time.Now
	}
	return &operationService{
		repoManager: repoManager,
		accounts:    accounts,
		pubsub:      pubsub,
		expiry:      expiry,
		now:         clock,
	}, nil
}

// Propose registers a new pending operation. The proposer must be a signer
// of the wallet, and the set of signers allowed to respond is captured
// now. A zero deadline means the default expiry.
func (s *operationService) Propose(
	ctx context.Context, proposer string, payload domain.Payload,
	reason string, deadline time.Time,
) (*domain.Operation, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ProcessExpired(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	if deadline.IsZero() {
		deadline = now.Add(s.expiry)
	}

	var op *domain.Operation
	if err := s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			if _, err := w.GetSigner(proposer); err != nil {
				return nil, domain.ErrAccessDenied
			}
			allowed, required, err := w.Approvers(payload.Kind)
			if err != nil {
				return nil, err
			}
			op, err = domain.NewOperation(
				w.NextRequestID(), proposer, payload, reason,
				now.Unix(), deadline.Unix(), allowed, required,
			)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.repoManager.OperationRepository().AddOperation(ctx, op); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      op.Kind().String(),
		"proposer":  proposer,
		"required":  op.Required,
	}).Info("operation proposed")

	publishOperationProposed(s.pubsub, op)
	return op.Clone(), nil
}

// Respond records the decision of signer. A rejected or expired operation is
// processed straight away, a confirmed one is executed. The processed
// operation is returned in those cases.
func (s *operationService) Respond(
	ctx context.Context, id uint64, signer string, approve bool,
) (*domain.Operation, *domain.ProcessedOperation, error) {
	now := s.now().Unix()

	var updated *domain.Operation
	var respondErr error
	if err := s.repoManager.OperationRepository().UpdateOperation(
		ctx, id,
		func(op *domain.Operation) (*domain.Operation, error) {
			respondErr = op.Respond(signer, approve, now)
			if respondErr != nil && !errors.Is(respondErr, domain.ErrOperationExpired) {
				return nil, respondErr
			}
			updated = op.Clone()
			return op, nil
		},
	); err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"operation": id,
		"signer":    signer,
		"approve":   approve,
		"status":    updated.Status.String(),
	}).Info("operation response recorded")

	if respondErr != nil {
		processed, err := s.process(ctx, updated, "", nil)
		if err != nil {
			return nil, nil, err
		}
		return updated, processed, respondErr
	}

	switch updated.Status {
	case domain.OperationConfirmed:
		processed, err := s.Execute(ctx, id)
		if err != nil {
			return updated, nil, err
		}
		return updated, processed, nil
	case domain.OperationFailed:
		processed, err := s.process(ctx, updated, "", nil)
		if err != nil {
			return nil, nil, err
		}
		return updated, processed, nil
	default:
		return updated, nil, nil
	}
}

// Execute runs a confirmed operation and moves it to the processed ones,
// whatever the outcome of the execution. The operation is marked Executing
// before running, so it is never run twice. Concurrent calls for the same
// operation fail with ErrOperationInProgress.
func (s *operationService) Execute(
	ctx context.Context, id uint64,
) (*domain.ProcessedOperation, error) {
	if _, loaded := s.executing.LoadOrStore(id, struct{}{}); loaded {
		return nil, ErrOperationInProgress
	}
	defer s.executing.Delete(id)

	var op *domain.Operation
	if err := s.repoManager.OperationRepository().UpdateOperation(
		ctx, id,
		func(o *domain.Operation) (*domain.Operation, error) {
			if err := o.StartExecution(); err != nil {
				return nil, err
			}
			op = o.Clone()
			return o, nil
		},
	); err != nil {
		return nil, err
	}

	result, execErr := s.execute(ctx, op)
	if execErr != nil {
		log.WithError(execErr).WithFields(log.Fields{
			"operation": id,
			"kind":      op.Kind().String(),
		}).Warn("operation execution failed")
	}

	processed, err := s.process(ctx, op, result, execErr)
	if err != nil {
		fields := log.Fields{
			"operation": id,
			"kind":      op.Kind().String(),
			"result":    result,
		}
		if execErr != nil {
			fields["execution_error"] = execErr.Error()
		}
		log.WithError(err).WithFields(fields).Error(
			"operation executed but not processed, it is left in executing status",
		)
		return nil, err
	}
	return processed, nil
}

// ProcessExpired moves every pending operation past its deadline to the
// processed ones.
func (s *operationService) ProcessExpired(
	ctx context.Context,
) ([]*domain.ProcessedOperation, error) {
	ops, err := s.repoManager.OperationRepository().ListPendingOperations(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	expired := make([]*domain.ProcessedOperation, 0)
	for _, op := range ops {
		if !op.Expire(now) {
			continue
		}
		processed, err := s.process(ctx, op, "", nil)
		if err != nil {
			return nil, err
		}
		expired = append(expired, processed)
	}
	return expired, nil
}

func (s *operationService) GetOperation(
	ctx context.Context, id uint64,
) (*domain.Operation, error) {
	return s.repoManager.OperationRepository().GetOperation(ctx, id)
}

func (s *operationService) ListOperations(
	ctx context.Context,
) ([]*domain.Operation, error) {
	return s.repoManager.OperationRepository().ListPendingOperations(ctx)
}

func (s *operationService) GetProcessedOperation(
	ctx context.Context, id uint64,
) (*domain.ProcessedOperation, error) {
	return s.repoManager.OperationRepository().GetProcessedOperation(ctx, id)
}

func (s *operationService) ListProcessedOperations(
	ctx context.Context,
) ([]*domain.ProcessedOperation, error) {
	return s.repoManager.OperationRepository().ListProcessedOperations(ctx)
}

func (s *operationService) process(
	ctx context.Context, op *domain.Operation, result string, execErr error,
) (*domain.ProcessedOperation, error) {
	processed, err := op.Process(result, execErr, s.now().Unix())
	if err != nil {
		return nil, err
	}
	if err := s.repoManager.OperationRepository().ProcessOperation(
		ctx, processed,
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"operation": op.ID,
		"kind":      op.Kind().String(),
		"status":    processed.Status.String(),
	}).Info("operation processed")

	publishOperationProcessed(s.pubsub, processed)
	return processed, nil
}
