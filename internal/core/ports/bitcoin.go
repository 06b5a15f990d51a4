package ports

import (
	"context"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

// BitcoinService is the external bitcoin data source.
type BitcoinService interface {
	GetBalance(ctx context.Context, network btc.Network, address string) (uint64, error)
	GetUtxos(ctx context.Context, network btc.Network, address string) ([]btc.Utxo, error)
	// GetCurrentFeePercentiles returns recent fee rates in millisat/byte.
	GetCurrentFeePercentiles(ctx context.Context, network btc.Network) ([]uint64, error)
	// GetTransactionStatus returns the inclusion status of the transaction.
	// An unknown transaction is reported as unconfirmed.
	GetTransactionStatus(ctx context.Context, network btc.Network, txid string) (btc.TxStatus, error)
	// SendTransaction broadcasts the hex encoded tx and returns its id.
	SendTransaction(ctx context.Context, network btc.Network, txHex string) (string, error)
}
