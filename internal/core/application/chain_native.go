package application

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

type nativeLedgerAdapter struct {
	svc ports.NativeLedgerService
}

func (a *nativeLedgerAdapter) balance(
	ctx context.Context, chain *domain.Chain,
) (*big.Int, error) {
	balance, err := a.svc.AccountBalance(ctx, chain.Address)
	if err != nil {
		return nil, fmt.Errorf("native ledger account_balance: %w", err)
	}
	return new(big.Int).SetUint64(balance), nil
}

// send is a single step transfer, final once the block index is returned.
func (a *nativeLedgerAdapter) send(
	ctx context.Context, ledger *domain.Ledger, destination string,
	amount *big.Int, memo uint64,
) (*SendResult, error) {
	value, err := toUint64(amount)
	if err != nil {
		return nil, err
	}
	blockIndex, err := a.transfer(ctx, ledger, destination, value, memo)
	if err != nil {
		return nil, err
	}
	return &SendResult{
		Chain:     domain.NativeLedgerChain(),
		Reference: strconv.FormatUint(blockIndex, 10),
	}, nil
}

// topUp sends amount to the cycles minting account of the canister. The
// returned pending transfer is confirmed once the minter is notified.
func (a *nativeLedgerAdapter) topUp(
	ctx context.Context, ledger *domain.Ledger, canisterID string, amount uint64,
) (*SendResult, error) {
	destination, err := a.svc.CyclesMintingAccount(ctx, canisterID)
	if err != nil {
		return nil, fmt.Errorf("native ledger cycles minting account: %w", err)
	}
	blockIndex, err := a.transfer(ctx, ledger, destination, amount, TopUpMemo)
	if err != nil {
		return nil, err
	}
	pending := domain.NewNativeLedgerPending(blockIndex, canisterID)
	return &SendResult{
		Chain:     domain.NativeLedgerChain(),
		Reference: strconv.FormatUint(blockIndex, 10),
		Pending:   &pending,
	}, nil
}

func (a *nativeLedgerAdapter) transfer(
	ctx context.Context, ledger *domain.Ledger, destination string,
	amount, memo uint64,
) (uint64, error) {
	blockIndex, err := a.svc.Transfer(ctx, ports.TransferArgs{
		From:       ledger.Owner,
		Subaccount: ledger.Subaccount,
		To:         destination,
		Amount:     amount,
		Memo:       memo,
	})
	if err != nil {
		return 0, fmt.Errorf("native ledger transfer: %w", err)
	}
	return blockIndex, nil
}

func (a *nativeLedgerAdapter) checkPending(
	ctx context.Context, pending domain.PendingTransfer,
) (bool, error) {
	if pending.NativeLedger == nil {
		return false, domain.ErrInvalidPending
	}
	if pending.NativeLedger.CanisterID == "" {
		return true, nil
	}
	if _, err := a.svc.NotifyTopUp(
		ctx, pending.NativeLedger.BlockIndex, pending.NativeLedger.CanisterID,
	); err != nil {
		return false, fmt.Errorf("native ledger notify_top_up: %w", err)
	}
	return true, nil
}
