package ports

import (
	"context"
	"math/big"
)

// EvmService relays signed transactions to an EVM node and exposes the
// account data needed to build them.
type EvmService interface {
	GetBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error)
	GetNonce(ctx context.Context, chainID uint64, address string) (uint64, error)
	SuggestGasPrice(ctx context.Context, chainID uint64) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context, chainID uint64) (*big.Int, error)
	SendRawTransaction(ctx context.Context, chainID uint64, rawTx []byte) (string, error)
	// IsConfirmed returns whether a receipt for the tx exists and reports
	// success.
	IsConfirmed(ctx context.Context, chainID uint64, txHash string) (bool, error)
}
