package application

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

type bridgeAdapter struct {
	svc     ports.BridgeService
	bitcoin *bitcoinAdapter
}

func (a *bridgeAdapter) balance(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
) (*big.Int, error) {
	balance, err := a.svc.Balance(ctx, chain.ID.Network, ledger.Owner, ledger.Subaccount)
	if err != nil {
		return nil, fmt.Errorf("bridge icrc1_balance_of on %s: %w", chain.ID.Network, err)
	}
	return new(big.Int).SetUint64(balance), nil
}

// send transfers wrapped tokens to another ICRC-1 account. The transfer is
// final once the block index is returned.
func (a *bridgeAdapter) send(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	destination string, amount *big.Int, memo uint64,
) (*SendResult, error) {
	value, err := toUint64(amount)
	if err != nil {
		return nil, err
	}
	blockIndex, err := a.svc.Transfer(ctx, chain.ID.Network, ports.TransferArgs{
		From:       ledger.Owner,
		Subaccount: ledger.Subaccount,
		To:         destination,
		Amount:     value,
		Memo:       memo,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge icrc1_transfer on %s: %w", chain.ID.Network, err)
	}
	return &SendResult{
		Chain:     chain.ID,
		Reference: strconv.FormatUint(blockIndex, 10),
	}, nil
}

// swapToBtc burns wrapped tokens in exchange for BTC sent to destination.
func (a *bridgeAdapter) swapToBtc(
	ctx context.Context, ledger *domain.Ledger, network btc.Network,
	destination string, amount uint64,
) (*SendResult, error) {
	if err := btc.ValidateAddress(destination, network); err != nil {
		return nil, err
	}
	blockIndex, err := a.svc.RetrieveBtc(ctx, network, ports.TransferArgs{
		From:       ledger.Owner,
		Subaccount: ledger.Subaccount,
		To:         destination,
		Amount:     amount,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge retrieve_btc on %s: %w", network, err)
	}

	log.WithFields(log.Fields{
		"account":     ledger.Subaccount.AccountID(),
		"network":     network.String(),
		"block_index": blockIndex,
	}).Info("bridge retrieval requested")

	pending := domain.NewBridgeRetrievePending(blockIndex)
	return &SendResult{
		Chain:     domain.BridgeChain(network),
		Reference: strconv.FormatUint(blockIndex, 10),
		Pending:   &pending,
	}, nil
}

// swapFromBtc sends BTC from the account's bitcoin chain to its deposit
// address at the bridge minter.
func (a *bridgeAdapter) swapFromBtc(
	ctx context.Context, ledger *domain.Ledger, btcChain *domain.Chain,
	amount uint64,
) (*SendResult, error) {
	network := btcChain.ID.Network
	depositAddress, err := a.svc.GetBtcAddress(ctx, network, ledger.Owner, ledger.Subaccount)
	if err != nil {
		return nil, fmt.Errorf("bridge get_btc_address on %s: %w", network, err)
	}

	res, err := a.bitcoin.send(
		ctx, ledger, btcChain, depositAddress, new(big.Int).SetUint64(amount),
	)
	if err != nil {
		return nil, err
	}

	pending := domain.NewBridgeDepositPending(res.Reference)
	return &SendResult{
		Chain:     domain.BridgeChain(network),
		Reference: res.Reference,
		Fee:       res.Fee,
		Pending:   &pending,
	}, nil
}

// checkPending confirms a retrieval once the minter reports it confirmed, and
// a deposit once update_balance reports it minted.
func (a *bridgeAdapter) checkPending(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	pending domain.PendingTransfer,
) (bool, string, error) {
	if pending.Bridge == nil {
		return false, "", domain.ErrInvalidPending
	}
	network := chain.ID.Network

	if pending.Bridge.BlockIndex != nil {
		status, err := a.svc.RetrieveBtcStatus(ctx, network, *pending.Bridge.BlockIndex)
		if err != nil {
			return false, "", fmt.Errorf("bridge retrieve_btc_status on %s: %w", network, err)
		}
		return status == ports.RetrieveStatusConfirmed, string(status), nil
	}

	minted, err := a.svc.UpdateBalance(ctx, network, ledger.Owner, ledger.Subaccount)
	if err != nil {
		return false, "", fmt.Errorf("bridge update_balance on %s: %w", network, err)
	}
	for _, u := range minted {
		if u.TxID == pending.Bridge.TxID {
			return true, "minted", nil
		}
	}
	return false, "", nil
}
