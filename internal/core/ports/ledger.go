package ports

import (
	"context"

	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// TransferArgs are the arguments of a native or bridge ledger transfer.
type TransferArgs struct {
	From       icp.Principal
	Subaccount [32]byte
	To         string
	Amount     uint64
	Memo       uint64
}

// NativeLedgerService is the native asset ledger.
type NativeLedgerService interface {
	// AccountBalance returns the balance of an account identifier.
	AccountBalance(ctx context.Context, accountID string) (uint64, error)
	// Transfer moves funds and returns the index of the block recording it.
	Transfer(ctx context.Context, args TransferArgs) (uint64, error)
	// TransferFee ...
	TransferFee(ctx context.Context) (uint64, error)
	// NotifyTopUp converts the tokens sent at blockIndex into cycles for the
	// canister and returns the amount of cycles minted.
	NotifyTopUp(ctx context.Context, blockIndex uint64, canisterID string) (uint64, error)
	// CyclesMintingAccount returns the account identifier a top up for the
	// canister must be sent to.
	CyclesMintingAccount(ctx context.Context, canisterID string) (string, error)
}

// RetrieveStatus is the status of a bridge to BTC withdrawal.
type RetrieveStatus string

const (
	RetrieveStatusUnknown      RetrieveStatus = "unknown"
	RetrieveStatusPending      RetrieveStatus = "pending"
	RetrieveStatusSigning      RetrieveStatus = "signing"
	RetrieveStatusSending      RetrieveStatus = "sending"
	RetrieveStatusSubmitted    RetrieveStatus = "submitted"
	RetrieveStatusAmountTooLow RetrieveStatus = "amount_too_low"
	RetrieveStatusConfirmed    RetrieveStatus = "confirmed"
)

// MintedUtxo is a deposit the bridge minter converted into wrapped tokens.
type MintedUtxo struct {
	TxID       string
	Vout       uint32
	Amount     uint64
	BlockIndex uint64
}

// BridgeService is the wrapped bitcoin minter together with its ledger.
type BridgeService interface {
	// Balance returns the wrapped balance of an ICRC-1 account.
	Balance(ctx context.Context, network btc.Network, owner icp.Principal, subaccount [32]byte) (uint64, error)
	// Transfer moves wrapped tokens to the ICRC-1 account in args.To.
	Transfer(ctx context.Context, network btc.Network, args TransferArgs) (uint64, error)
	// GetBtcAddress returns the deposit address of the account.
	GetBtcAddress(ctx context.Context, network btc.Network, owner icp.Principal, subaccount [32]byte) (string, error)
	// UpdateBalance mints wrapped tokens for the confirmed deposits of the
	// account and returns them.
	UpdateBalance(ctx context.Context, network btc.Network, owner icp.Principal, subaccount [32]byte) ([]MintedUtxo, error)
	// RetrieveBtc burns wrapped tokens and sends BTC to address.
	RetrieveBtc(ctx context.Context, network btc.Network, args TransferArgs) (uint64, error)
	// RetrieveBtcStatus ...
	RetrieveBtcStatus(ctx context.Context, network btc.Network, blockIndex uint64) (RetrieveStatus, error)
}
