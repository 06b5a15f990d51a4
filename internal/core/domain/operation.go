package domain

import (
	"sort"
)

// OperationStatus is the status of a proposed operation.
type OperationStatus int

const (
	OperationPending OperationStatus = iota
	OperationConfirmed
	OperationFailed
	OperationExpired
	OperationExecuting
)

func (s OperationStatus) String() string {
	switch s {
	case OperationPending:
		return "pending"
	case OperationConfirmed:
		return "confirmed"
	case OperationFailed:
		return "failed"
	case OperationExpired:
		return "expired"
	case OperationExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

// Response is the decision of a signer on an operation.
type Response struct {
	Approve   bool
	Timestamp int64
}

// Operation is a proposal to execute a privileged action. The set of signers
// allowed to respond and the number of approvals required are fixed when the
// operation is proposed. The payload is never mutated after that.
type Operation struct {
	ID             uint64
	Proposer       string
	Payload        Payload
	Reason         string
	CreatedAt      int64
	Deadline       int64
	AllowedSigners []string
	Required       int
	Responses      map[string]Response
	Status         OperationStatus
}

// NewOperation returns a pending operation. allowed is the snapshot of the
// signers that can respond, required the number of approvals it needs.
func NewOperation(
	id uint64, proposer string, payload Payload, reason string,
	now, deadline int64, allowed []string, required int,
) (*Operation, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if deadline <= now {
		return nil, ErrInvalidDeadline
	}
	if len(allowed) == 0 || required <= 0 || required > len(allowed) {
		return nil, ErrNoEligibleSigners
	}

	snapshot := append([]string{}, allowed...)
	sort.Strings(snapshot)

	return &Operation{
		ID:             id,
		Proposer:       proposer,
		Payload:        payload,
		Reason:         reason,
		CreatedAt:      now,
		Deadline:       deadline,
		AllowedSigners: snapshot,
		Required:       required,
		Responses:      make(map[string]Response),
		Status:         OperationPending,
	}, nil
}

// Kind ...
func (o *Operation) Kind() OperationKind {
	return o.Payload.Kind
}

// IsPending ...
func (o *Operation) IsPending() bool {
	return o.Status == OperationPending
}

// IsConfirmed ...
func (o *Operation) IsConfirmed() bool {
	return o.Status == OperationConfirmed
}

// IsAllowed returns whether the signer is part of the approvers snapshot.
func (o *Operation) IsAllowed(signerID string) bool {
	i := sort.SearchStrings(o.AllowedSigners, signerID)
	return i < len(o.AllowedSigners) && o.AllowedSigners[i] == signerID
}

// Expire moves a pending operation past its deadline to the Expired status.
// It returns whether the status changed.
func (o *Operation) Expire(now int64) bool {
	if o.Status != OperationPending || now <= o.Deadline {
		return false
	}
	o.Status = OperationExpired
	return true
}

// Respond records the decision of the signer. The operation becomes
// Confirmed once approvals reach Required, and Failed as soon as the
// rejections make that impossible.
func (o *Operation) Respond(signerID string, approve bool, now int64) error {
	o.Expire(now)
	switch o.Status {
	case OperationPending:
	case OperationExpired:
		return ErrOperationExpired
	default:
		return ErrOperationNotPending
	}

	if !o.IsAllowed(signerID) {
		return ErrAccessDenied
	}
	if _, ok := o.Responses[signerID]; ok {
		return ErrAlreadyResponded
	}

	if o.Responses == nil {
		o.Responses = make(map[string]Response)
	}
	o.Responses[signerID] = Response{Approve: approve, Timestamp: now}

	approvals, rejections := o.Tally()
	if approvals >= o.Required {
		o.Status = OperationConfirmed
	} else if rejections > len(o.AllowedSigners)-o.Required {
		o.Status = OperationFailed
	}
	return nil
}

// StartExecution moves a confirmed operation to Executing. An operation left
// in this status was run but never processed, and it can't be run again.
func (o *Operation) StartExecution() error {
	if o.Status != OperationConfirmed {
		return ErrOperationNotConfirmed
	}
	o.Status = OperationExecuting
	return nil
}

// Tally returns the number of approvals and rejections collected so far.
func (o *Operation) Tally() (approvals, rejections int) {
	for _, r := range o.Responses {
		if r.Approve {
			approvals++
		} else {
			rejections++
		}
	}
	return
}

// Clone returns a copy of the operation sharing the immutable payload.
func (o *Operation) Clone() *Operation {
	cpy := *o
	cpy.AllowedSigners = append([]string{}, o.AllowedSigners...)
	cpy.Responses = make(map[string]Response, len(o.Responses))
	for id, r := range o.Responses {
		cpy.Responses[id] = r
	}
	return &cpy
}

// ProcessedStatus is the final outcome of an operation.
type ProcessedStatus int

const (
	ProcessedExecuted ProcessedStatus = iota
	ProcessedFailed
	ProcessedRejected
	ProcessedExpired
)

func (s ProcessedStatus) String() string {
	switch s {
	case ProcessedExecuted:
		return "executed"
	case ProcessedFailed:
		return "failed"
	case ProcessedRejected:
		return "rejected"
	case ProcessedExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ProcessedOperation is an operation moved out of the pending ones, along
// with the result or the error of its execution.
type ProcessedOperation struct {
	Operation   Operation
	Status      ProcessedStatus
	Result      string
	Error       string
	ProcessedAt int64
}

// Process wraps the operation and the outcome of its execution. A confirmed
// operation is Executed or Failed depending on execErr, while rejected and
// expired ones are recorded as such without outcome.
func (o *Operation) Process(result string, execErr error, now int64) (*ProcessedOperation, error) {
	processed := &ProcessedOperation{
		Operation:   *o.Clone(),
		ProcessedAt: now,
	}

	switch o.Status {
	case OperationConfirmed, OperationExecuting:
		processed.Status = ProcessedExecuted
		processed.Result = result
		if execErr != nil {
			processed.Status = ProcessedFailed
			processed.Result = ""
			processed.Error = execErr.Error()
		}
	case OperationFailed:
		processed.Status = ProcessedRejected
		processed.Error = "operation rejected by signers"
	case OperationExpired:
		processed.Status = ProcessedExpired
		processed.Error = ErrOperationExpired.Error()
	default:
		return nil, ErrOperationNotConfirmed
	}
	return processed, nil
}
