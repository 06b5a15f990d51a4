package btc

import (
	"errors"
	"fmt"
)

var (
	// ErrDustOutput is returned when an output would carry less than the
	// dust threshold.
	ErrDustOutput = errors.New("output amount is below the dust threshold")
	// ErrAmountTooLarge is returned for amounts above the total bitcoin supply.
	ErrAmountTooLarge = errors.New("amount exceeds the maximum bitcoin supply")
	// ErrFeeExceedsAmount ...
	ErrFeeExceedsAmount = errors.New("fee exceeds the amount to send")
	// ErrFeeNotConverged is returned when the fee estimation loop doesn't
	// settle within MaxFeeIterations rounds.
	ErrFeeNotConverged = errors.New("fee estimation did not converge")
	// ErrUnknownNetwork ...
	ErrUnknownNetwork = errors.New("unknown bitcoin network")
	// ErrAddressNetworkMismatch ...
	ErrAddressNetworkMismatch = errors.New("address does not belong to the network")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("invalid compressed public key")
	// ErrInvalidSignatureLength ...
	ErrInvalidSignatureLength = errors.New("signature must be 64 bytes long")
	// ErrInvalidSignature ...
	ErrInvalidSignature = errors.New("signature scalars out of range")
	// ErrSignatureCountMismatch ...
	ErrSignatureCountMismatch = errors.New("number of signatures does not match number of inputs")
)

// InsufficientBalanceError carries the amounts that made coin selection fail.
type InsufficientBalanceError struct {
	Available uint64
	Required  uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance: available %d, required %d", e.Available, e.Required,
	)
}
