package domain

import "errors"

// Subaccount errors
var (
	// ErrIdentityTooLong is returned when deriving a subaccount from an
	// identity longer than MaxIdentityLength bytes.
	ErrIdentityTooLong = errors.New("identity must be at most 29 bytes long")
	// ErrInvalidSubaccount ...
	ErrInvalidSubaccount = errors.New("subaccount must be 32 bytes long")
	// ErrUnknownEnvironment ...
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// Ledger errors
var (
	// ErrPublicKeyAlreadySet is returned when trying to set the public key of
	// a ledger a second time.
	ErrPublicKeyAlreadySet = errors.New("public key is already set")
	// ErrPublicKeyNotSet ...
	ErrPublicKeyNotSet = errors.New("public key is not set")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key must be a valid 33 bytes compressed secp256k1 point")
	// ErrChainNotFound ...
	ErrChainNotFound = errors.New("chain not found")
	// ErrChainAlreadyExists ...
	ErrChainAlreadyExists = errors.New("chain already exists")
	// ErrUnknownChain is returned when parsing an unsupported chain id.
	ErrUnknownChain = errors.New("unknown chain")
	// ErrPendingNotFound ...
	ErrPendingNotFound = errors.New("pending transfer not found")
	// ErrInvalidPending ...
	ErrInvalidPending = errors.New("pending transfer does not match the chain")
)

// Account errors
var (
	// ErrWalletNotFound ...
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists ...
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrCannotRemoveDefaultAccount is returned when trying to remove the
	// account derived from the production nonce 0.
	ErrCannotRemoveDefaultAccount = errors.New("default account cannot be removed")
	// ErrInvalidAccountName ...
	ErrInvalidAccountName = errors.New("account name must be between 1 and 64 characters")
)

// Signer and settings errors
var (
	// ErrSignerNotFound ...
	ErrSignerNotFound = errors.New("signer not found")
	// ErrSignerAlreadyExists ...
	ErrSignerAlreadyExists = errors.New("signer already exists")
	// ErrCannotRemoveLastAdmin ...
	ErrCannotRemoveLastAdmin = errors.New("at least one admin signer must be kept")
	// ErrInvalidRole ...
	ErrInvalidRole = errors.New("invalid signer role")
	// ErrTooManyControllers ...
	ErrTooManyControllers = errors.New("too many controllers")
	// ErrInvalidPolicy ...
	ErrInvalidPolicy = errors.New("invalid policy")
)

// Operation errors
var (
	// ErrAccessDenied is returned when the caller is not allowed to propose
	// or respond to an operation.
	ErrAccessDenied = errors.New("access denied")
	// ErrAlreadyResponded ...
	ErrAlreadyResponded = errors.New("signer has already responded to this operation")
	// ErrOperationExpired ...
	ErrOperationExpired = errors.New("operation is expired")
	// ErrOperationNotPending ...
	ErrOperationNotPending = errors.New("operation is not pending")
	// ErrOperationNotConfirmed ...
	ErrOperationNotConfirmed = errors.New("operation must be confirmed to be executed")
	// ErrOperationNotFound ...
	ErrOperationNotFound = errors.New("operation not found")
	// ErrOperationAlreadyExists ...
	ErrOperationAlreadyExists = errors.New("operation already exists")
	// ErrOperationAlreadyProcessed ...
	ErrOperationAlreadyProcessed = errors.New("operation already processed")
	// ErrInvalidPayload is returned when the payload variant doesn't match its
	// kind or misses required fields.
	ErrInvalidPayload = errors.New("invalid operation payload")
	// ErrUnknownOperationKind ...
	ErrUnknownOperationKind = errors.New("unknown operation kind")
	// ErrInvalidDeadline ...
	ErrInvalidDeadline = errors.New("deadline must be in the future")
	// ErrNoEligibleSigners ...
	ErrNoEligibleSigners = errors.New("no signer is eligible to approve the operation")
)

// ErrInvalidAmount ...
var ErrInvalidAmount = errors.New("invalid amount")
