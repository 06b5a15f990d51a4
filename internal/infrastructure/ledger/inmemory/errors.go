package inmemoryledger

import "errors"

var (
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidDestination ...
	ErrInvalidDestination = errors.New("invalid destination")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrBlockNotFound ...
	ErrBlockNotFound = errors.New("block not found")
	// ErrInvalidTopUp is returned when notifying a block that is not a top up
	// transfer for the given canister.
	ErrInvalidTopUp = errors.New("block is not a top up for the canister")
	// ErrNetworkNotSupported ...
	ErrNetworkNotSupported = errors.New("network not supported by bridge")
	// ErrAmountTooLow ...
	ErrAmountTooLow = errors.New("amount is below the minimum retrieval amount")
	// ErrMissingBitcoinService ...
	ErrMissingBitcoinService = errors.New("missing bitcoin service")
)
