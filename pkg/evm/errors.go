package evm

import "errors"

var (
	// ErrEmptyTransaction ...
	ErrEmptyTransaction = errors.New("raw transaction must not be empty")
	// ErrInvalidTransactionType is returned when the leading byte of a raw tx
	// is neither an RLP list marker nor a supported typed-tx marker.
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	// ErrInvalidFieldCount ...
	ErrInvalidFieldCount = errors.New("unexpected number of transaction fields")
	// ErrTrailingBytes ...
	ErrTrailingBytes = errors.New("trailing bytes after rlp item")
	// ErrExpectedString ...
	ErrExpectedString = errors.New("expected rlp string item")
	// ErrExpectedList ...
	ErrExpectedList = errors.New("expected rlp list item")
	// ErrInvalidAddressLength ...
	ErrInvalidAddressLength = errors.New("address must be either empty or 20 bytes long")
	// ErrUint64Overflow ...
	ErrUint64Overflow = errors.New("integer does not fit in 64 bits")
	// ErrChainIDMismatch ...
	ErrChainIDMismatch = errors.New("transaction chain id does not match the requested one")
	// ErrTransactionNotSigned ...
	ErrTransactionNotSigned = errors.New("transaction is not signed")

	// ErrInvalidSignatureLength ...
	ErrInvalidSignatureLength = errors.New("signature must be 64 bytes long")
	// ErrInvalidMessageLength ...
	ErrInvalidMessageLength = errors.New("message hash must be 32 bytes long")
	// ErrInvalidPublicKeyLength ...
	ErrInvalidPublicKeyLength = errors.New("compressed public key must be 33 bytes long")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key is not a valid secp256k1 point")
	// ErrRecoveryIDNotFound is returned when no recovery id yields the
	// expected public key.
	ErrRecoveryIDNotFound = errors.New("recovery id not found")
)
