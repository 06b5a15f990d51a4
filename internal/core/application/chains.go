package application

import (
	"context"
	"fmt"
	"math/big"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

// chains dispatches every chain capability to the adapter of the chain's
// family. Adapters work on a ledger snapshot and never mutate it: pending
// transfers are returned to the caller that records them.
type chains struct {
	native  *nativeLedgerAdapter
	bitcoin *bitcoinAdapter
	evm     *evmAdapter
	bridge  *bridgeAdapter
}

func newChains(
	signer ports.Signer,
	nativeSvc ports.NativeLedgerService,
	bitcoinSvc ports.BitcoinService,
	evmSvc ports.EvmService,
	bridgeSvc ports.BridgeService,
	defaultFeeRate uint64,
) *chains {
	bitcoin := &bitcoinAdapter{signer, bitcoinSvc, defaultFeeRate}
	return &chains{
		native:  &nativeLedgerAdapter{nativeSvc},
		bitcoin: bitcoin,
		evm:     &evmAdapter{signer, evmSvc},
		bridge:  &bridgeAdapter{bridgeSvc, bitcoin},
	}
}

func (c *chains) balance(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
) (*big.Int, error) {
	switch chain.ID.Kind {
	case domain.ChainNativeLedger:
		return c.native.balance(ctx, chain)
	case domain.ChainBitcoin:
		return c.bitcoin.balance(ctx, chain)
	case domain.ChainEvm:
		return c.evm.balance(ctx, chain)
	case domain.ChainBridge:
		return c.bridge.balance(ctx, ledger, chain)
	default:
		return nil, domain.ErrUnknownChain
	}
}

func (c *chains) send(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	destination string, amount *big.Int, memo uint64,
) (*SendResult, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	switch chain.ID.Kind {
	case domain.ChainNativeLedger:
		return c.native.send(ctx, ledger, destination, amount, memo)
	case domain.ChainBitcoin:
		return c.bitcoin.send(ctx, ledger, chain, destination, amount)
	case domain.ChainEvm:
		return c.evm.send(ctx, ledger, chain, destination, amount)
	case domain.ChainBridge:
		return c.bridge.send(ctx, ledger, chain, destination, amount, memo)
	default:
		return nil, domain.ErrUnknownChain
	}
}

// checkPending reports whether pending is final. For bridge retrievals it
// also returns the last status reported by the minter.
func (c *chains) checkPending(
	ctx context.Context, ledger *domain.Ledger, chain *domain.Chain,
	pending domain.PendingTransfer,
) (bool, string, error) {
	var (
		ok  bool
		err error
	)
	switch chain.ID.Kind {
	case domain.ChainNativeLedger:
		ok, err = c.native.checkPending(ctx, pending)
	case domain.ChainBitcoin:
		ok, err = c.bitcoin.checkPending(ctx, chain, pending)
	case domain.ChainEvm:
		ok, err = c.evm.checkPending(ctx, chain, pending)
	case domain.ChainBridge:
		return c.bridge.checkPending(ctx, ledger, chain, pending)
	default:
		err = domain.ErrUnknownChain
	}
	return ok, "", err
}

func signerKey(sub domain.Subaccount) ports.SignerKey {
	env := sub.Environment()
	return ports.SignerKey{
		KeyID:          env.KeyID(),
		DerivationPath: sub.DerivationPath(),
		Cycles:         env.SignCycles(),
	}
}

// sign asks the external signer for a signature of hash with the key of the
// subaccount.
func sign(
	ctx context.Context, signer ports.Signer, sub domain.Subaccount, hash []byte,
) ([]byte, error) {
	sig, err := signer.Sign(ctx, signerKey(sub), hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with key of %s: %w", sub.AccountID(), err)
	}
	if len(sig) != 64 {
		return nil, ErrInvalidSignature
	}
	return sig, nil
}

func toUint64(amount *big.Int) (uint64, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if !amount.IsUint64() {
		return 0, ErrAmountTooLarge
	}
	return amount.Uint64(), nil
}
