package application

import (
	"context"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

type bitcoinAdapter struct {
	signer         ports.Signer
	svc            ports.BitcoinService
	defaultFeeRate uint64
}

func (a *bitcoinAdapter) balance(
	ctx context.Context, chain *domain.Chain,
) (*big.Int, error) {
	balance, err := a.svc.GetBalance(ctx, chain.ID.Network, chain.Address)
	if err != nil {
		return nil, fmt.Errorf("bitcoin get_balance on %s: %w", chain.ID.Network, err)
	}
	return new(big.Int).SetUint64(balance), nil
}

func (a *bitcoinAdapter) send(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	destination string, amount *big.Int,
) (*SendResult, error) {
	value, err := toUint64(amount)
	if err != nil {
		return nil, err
	}
	if !ledger.HasPublicKey() {
		return nil, domain.ErrPublicKeyNotSet
	}
	network := chain.ID.Network
	if err := btc.ValidateAddress(destination, network); err != nil {
		return nil, err
	}

	feeRate, err := a.feeRate(ctx, network)
	if err != nil {
		return nil, err
	}
	utxos, err := a.svc.GetUtxos(ctx, network, chain.Address)
	if err != nil {
		return nil, fmt.Errorf("bitcoin get_utxos on %s: %w", network, err)
	}

	tx, err := btc.BuildTransaction(btc.BuildArgs{
		PublicKey:   ledger.PublicKey,
		Network:     network,
		Utxos:       utxos,
		Destination: destination,
		Amount:      value,
		FeeRate:     feeRate,
	})
	if err != nil {
		return nil, err
	}

	hashes, err := tx.SignatureHashes()
	if err != nil {
		return nil, err
	}
	signatures := make([][]byte, 0, len(hashes))
	for _, hash := range hashes {
		sig, err := sign(ctx, a.signer, ledger.Subaccount, hash)
		if err != nil {
			return nil, err
		}
		signatures = append(signatures, sig)
	}
	if err := tx.ApplySignatures(signatures, ledger.PublicKey); err != nil {
		return nil, err
	}

	txHex, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	txid, err := a.svc.SendTransaction(ctx, network, txHex)
	if err != nil {
		return nil, fmt.Errorf("bitcoin send_transaction on %s: %w", network, err)
	}
	if txid == "" {
		txid = tx.TxID()
	}

	log.WithFields(log.Fields{
		"account": ledger.Subaccount.AccountID(),
		"chain":   chain.ID.String(),
		"txid":    txid,
		"fee":     tx.Fee,
	}).Info("bitcoin transaction broadcasted")

	pending := domain.NewBitcoinPending(txid, destination, value)
	return &SendResult{
		Chain:     chain.ID,
		Reference: txid,
		Fee:       tx.Fee,
		Pending:   &pending,
	}, nil
}

// feeRate returns the median of the current fee percentiles, or the default
// one if the data source has none.
func (a *bitcoinAdapter) feeRate(
	ctx context.Context, network btc.Network,
) (uint64, error) {
	percentiles, err := a.svc.GetCurrentFeePercentiles(ctx, network)
	if err != nil {
		return 0, fmt.Errorf("bitcoin get_current_fee_percentiles on %s: %w", network, err)
	}
	return btc.MedianFeeRate(percentiles, a.defaultFeeRate), nil
}

// checkPending reports whether the pending transaction is included in a
// block. Mempool transactions are not final.
func (a *bitcoinAdapter) checkPending(
	ctx context.Context, chain *domain.Chain, pending domain.PendingTransfer,
) (bool, error) {
	if pending.Bitcoin == nil {
		return false, domain.ErrInvalidPending
	}
	status, err := a.svc.GetTransactionStatus(ctx, chain.ID.Network, pending.Bitcoin.TxID)
	if err != nil {
		return false, fmt.Errorf("bitcoin get_transaction_status on %s: %w", chain.ID.Network, err)
	}
	return status.IsFinal(), nil
}
