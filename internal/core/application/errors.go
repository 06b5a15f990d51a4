package application

import "errors"

var (
	// ErrStateConflict is returned when the state changed while waiting for
	// an external call and the result can't be applied anymore.
	ErrStateConflict = errors.New("state changed during the operation, retry")
	// ErrEvmRelayDisabled ...
	ErrEvmRelayDisabled = errors.New("evm relay is not configured")
	// ErrEvmChainIDRequired is returned when trying to query or send from the
	// chain agnostic EVM entry.
	ErrEvmChainIDRequired = errors.New("a non zero evm chain id is required")
	// ErrAmountTooLarge ...
	ErrAmountTooLarge = errors.New("amount exceeds the chain's maximum")
	// ErrUnsupportedOperation is returned when a chain doesn't support the
	// requested capability.
	ErrUnsupportedOperation = errors.New("operation not supported by chain")
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New("signer returned an invalid signature")
	// ErrUnknownDBType ...
	ErrUnknownDBType = errors.New("unknown db type")
	// ErrOperationInProgress is returned when an operation is already being
	// executed.
	ErrOperationInProgress = errors.New("operation execution already in progress")
	// ErrMissingCollaborator ...
	ErrMissingCollaborator = errors.New("missing external service")
)
