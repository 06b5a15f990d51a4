package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/evm"
)

type evmAdapter struct {
	signer ports.Signer
	svc    ports.EvmService
}

func (a *evmAdapter) relay(chain *domain.Chain) (ports.EvmService, error) {
	if a.svc == nil {
		return nil, ErrEvmRelayDisabled
	}
	if chain.ID.EvmChainID == 0 {
		return nil, ErrEvmChainIDRequired
	}
	return a.svc, nil
}

func (a *evmAdapter) balance(
	ctx context.Context, chain *domain.Chain,
) (*big.Int, error) {
	svc, err := a.relay(chain)
	if err != nil {
		return nil, err
	}
	balance, err := svc.GetBalance(ctx, chain.ID.EvmChainID, chain.Address)
	if err != nil {
		return nil, fmt.Errorf("evm get_balance on chain %d: %w", chain.ID.EvmChainID, err)
	}
	return balance, nil
}

// send builds, signs and relays an EIP-1559 value transfer.
func (a *evmAdapter) send(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	destination string, amount *big.Int,
) (*SendResult, error) {
	svc, err := a.relay(chain)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(destination) {
		return nil, fmt.Errorf("invalid evm address %q", destination)
	}
	chainID := chain.ID.EvmChainID

	nonce, err := svc.GetNonce(ctx, chainID, chain.Address)
	if err != nil {
		return nil, fmt.Errorf("evm get_nonce on chain %d: %w", chainID, err)
	}
	gasPrice, err := svc.SuggestGasPrice(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("evm gas_price on chain %d: %w", chainID, err)
	}
	tip, err := svc.SuggestGasTipCap(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("evm max_priority_fee on chain %d: %w", chainID, err)
	}

	to := common.HexToAddress(destination)
	feeCap := new(big.Int).Add(new(big.Int).Mul(gasPrice, big.NewInt(2)), tip)
	tx := &evm.Transaction{
		Type:      evm.DynamicFeeTxType,
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       EvmTransferGas,
		To:        &to,
		Value:     new(big.Int).Set(amount),
	}

	signed, err := a.signTransaction(ctx, ledger, tx)
	if err != nil {
		return nil, err
	}
	raw, err := signed.EncodeSigned()
	if err != nil {
		return nil, err
	}
	txHash, err := svc.SendRawTransaction(ctx, chainID, raw)
	if err != nil {
		return nil, fmt.Errorf("evm send_raw_transaction on chain %d: %w", chainID, err)
	}

	log.WithFields(log.Fields{
		"account": ledger.Subaccount.AccountID(),
		"chain":   chain.ID.String(),
		"tx_hash": txHash,
	}).Info("evm transaction relayed")

	pending := domain.NewEvmPending(txHash)
	return &SendResult{
		Chain:     chain.ID,
		Reference: txHash,
		Pending:   &pending,
	}, nil
}

// signRawTransaction decodes a raw unsigned tx of any supported type and
// returns its signed encoding. A tx without chain id is bound to chainID,
// while a zero chainID accepts the one of the tx.
func (a *evmAdapter) signRawTransaction(
	ctx context.Context, ledger *domain.Ledger, rawTx []byte, chainID uint64,
) ([]byte, error) {
	tx, err := evm.DecodeTransaction(rawTx)
	if err != nil {
		return nil, err
	}
	if tx.ChainID == nil || tx.ChainID.Sign() == 0 {
		tx.ChainID = new(big.Int).SetUint64(chainID)
	} else if chainID != 0 &&
		(!tx.ChainID.IsUint64() || tx.ChainID.Uint64() != chainID) {
		return nil, evm.ErrChainIDMismatch
	}
	tx.V, tx.R, tx.S = nil, nil, nil

	signed, err := a.signTransaction(ctx, ledger, tx)
	if err != nil {
		return nil, err
	}
	return signed.EncodeSigned()
}

func (a *evmAdapter) signTransaction(
	ctx context.Context, ledger *domain.Ledger, tx *evm.Transaction,
) (*evm.Transaction, error) {
	if !ledger.HasPublicKey() {
		return nil, domain.ErrPublicKeyNotSet
	}
	hash := tx.SigningHash().Bytes()
	if len(hash) != 32 {
		return nil, evm.ErrInvalidMessageLength
	}
	sig, err := sign(ctx, a.signer, ledger.Subaccount, hash)
	if err != nil {
		return nil, err
	}
	return evm.SignWith(tx, sig, ledger.PublicKey)
}

func (a *evmAdapter) checkPending(
	ctx context.Context, chain *domain.Chain, pending domain.PendingTransfer,
) (bool, error) {
	if pending.Evm == nil {
		return false, domain.ErrInvalidPending
	}
	svc, err := a.relay(chain)
	if err != nil {
		return false, err
	}
	confirmed, err := svc.IsConfirmed(ctx, chain.ID.EvmChainID, pending.Evm.TxHash)
	if err != nil {
		return false, fmt.Errorf("evm get_transaction_receipt on chain %d: %w", chain.ID.EvmChainID, err)
	}
	return confirmed, nil
}
