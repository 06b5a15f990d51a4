package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"golang.org/x/sync/errgroup"
)

// AccountService exposes the accounts of the wallet and every chain
// capability of their ledgers. Mutations that must be approved by the
// signers are driven by the OperationService through this service.
type AccountService interface {
	GetAccount(ctx context.Context, accountID string) (*AccountInfo, error)
	ListAccounts(ctx context.Context, withHidden bool) ([]AccountInfo, error)
	RequestPublicKey(ctx context.Context, accountID string) ([]byte, error)
	CreateAddress(
		ctx context.Context, accountID string, chain domain.ChainID,
	) (string, error)
	Balance(
		ctx context.Context, accountID string, chain domain.ChainID,
	) (*domain.TokenAmount, error)
	Balances(
		ctx context.Context, accountID string,
	) (map[string]domain.TokenAmount, error)
	Send(
		ctx context.Context, accountID string, chain domain.ChainID,
		destination string, amount *big.Int, memo uint64,
	) (*SendResult, error)
	TopUpCanister(
		ctx context.Context, accountID, canisterID string, amount uint64,
	) (*SendResult, error)
	SwapBtcToBridge(
		ctx context.Context, accountID string, network btc.Network, amount uint64,
	) (*SendResult, error)
	SwapBridgeToBtc(
		ctx context.Context, accountID string, network btc.Network,
		destination string, amount uint64,
	) (*SendResult, error)
	SignEvmTransaction(
		ctx context.Context, accountID string, rawTx []byte, chainID uint64,
	) ([]byte, error)
	CheckPending(
		ctx context.Context, accountID string, chain domain.ChainID,
	) ([]domain.PendingTransfer, error)
	RemovePending(
		ctx context.Context, accountID string, chain domain.ChainID,
		pendingID string,
	) (*domain.PendingTransfer, error)
}

type accountService struct {
	repoManager ports.RepoManager
	signer      ports.Signer
	pubsub      ports.PubSub
	chains      *chains
}

// NewAccountService ...
func NewAccountService(
	repoManager ports.RepoManager,
	signer ports.Signer,
	nativeSvc ports.NativeLedgerService,
	bitcoinSvc ports.BitcoinService,
	evmSvc ports.EvmService,
	bridgeSvc ports.BridgeService,
	pubsub ports.PubSub,
	defaultFeeRate uint64,
) (AccountService, error) {
	if repoManager == nil || signer == nil || nativeSvc == nil ||
		bitcoinSvc == nil || bridgeSvc == nil {
		return nil, ErrMissingCollaborator
	}
	return &accountService{
		repoManager: repoManager,
		signer:      signer,
		pubsub:      pubsub,
		chains: newChains(
			signer, nativeSvc, bitcoinSvc, evmSvc, bridgeSvc, defaultFeeRate,
		),
	}, nil
}

func (s *accountService) GetAccount(
	ctx context.Context, accountID string,
) (*AccountInfo, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	info := newAccountInfo(account)
	return &info, nil
}

func (s *accountService) ListAccounts(
	ctx context.Context, withHidden bool,
) ([]AccountInfo, error) {
	wallet, err := s.repoManager.WalletRepository().GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	accounts := wallet.ListAccounts(withHidden)
	infos := make([]AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		infos = append(infos, newAccountInfo(a))
	}
	return infos, nil
}

// RequestPublicKey fetches the key of the account from the signer and sets
// it on its ledger, unless already done. If a concurrent request set the
// same key meanwhile, this is a no-op.
func (s *accountService) RequestPublicKey(
	ctx context.Context, accountID string,
) ([]byte, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Ledger.HasPublicKey() {
		return account.Ledger.PublicKey, nil
	}

	sub := account.Ledger.Subaccount
	publicKey, err := s.signer.PublicKey(ctx, signerKey(sub))
	if err != nil {
		log.WithError(err).WithField("account", accountID).Warn(
			"failed to fetch public key from signer",
		)
		return nil, fmt.Errorf("signer public key of %s: %w", accountID, err)
	}

	if err := s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			a, err := w.GetAccount(accountID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrStateConflict, err)
			}
			if a.Ledger.HasPublicKey() {
				if bytes.Equal(a.Ledger.PublicKey, publicKey) {
					return w, nil
				}
				return nil, domain.ErrPublicKeyAlreadySet
			}
			if err := a.Ledger.SetPublicKey(publicKey); err != nil {
				return nil, err
			}
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	log.WithField("account", accountID).Info("public key set")
	return publicKey, nil
}

// CreateAddress adds the given chain to the account's ledger. Creating an
// address that already exists returns it.
func (s *accountService) CreateAddress(
	ctx context.Context, accountID string, chain domain.ChainID,
) (string, error) {
	var address string
	if err := s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			a, err := w.GetAccount(accountID)
			if err != nil {
				return nil, err
			}
			if c, err := a.Ledger.GetChain(chain); err == nil {
				address = c.Address
				return w, nil
			}
			c, err := a.Ledger.CreateAddress(chain)
			if err != nil {
				return nil, err
			}
			address = c.Address
			return w, nil
		},
	); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"account": accountID,
		"chain":   chain.String(),
	}).Debug("address created")
	return address, nil
}

func (s *accountService) Balance(
	ctx context.Context, accountID string, chainID domain.ChainID,
) (*domain.TokenAmount, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	chain, err := account.Ledger.GetChain(chainID)
	if err != nil {
		return nil, err
	}
	balance, err := s.chains.balance(ctx, account.Ledger, chain)
	if err != nil {
		return nil, err
	}
	amount := domain.NewTokenAmount(balance, chainID)
	return &amount, nil
}

// Balances fetches concurrently the balance of every chain of the account,
// except for the chain agnostic EVM entry. Any failure is returned.
func (s *accountService) Balances(
	ctx context.Context, accountID string,
) (map[string]domain.TokenAmount, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	balances := make(map[string]domain.TokenAmount)
	eg, ctx := errgroup.WithContext(ctx)
	for _, c := range account.Ledger.ListChains() {
		chain := c
		if chain.ID.Kind == domain.ChainEvm && chain.ID.EvmChainID == 0 {
			continue
		}
		eg.Go(func() error {
			balance, err := s.chains.balance(ctx, account.Ledger, chain)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			balances[chain.ID.String()] = domain.NewTokenAmount(balance, chain.ID)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}

// Send transfers amount to destination on the given chain. The transfer is
// built and signed on a snapshot of the ledger; only the resulting pending
// transfer, if any, is written back.
func (s *accountService) Send(
	ctx context.Context, accountID string, chainID domain.ChainID,
	destination string, amount *big.Int, memo uint64,
) (*SendResult, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	chain, err := account.Ledger.GetChain(chainID)
	if err != nil {
		return nil, err
	}

	res, err := s.chains.send(ctx, account.Ledger, chain, destination, amount, memo)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"account": accountID,
			"chain":   chainID.String(),
		}).Warn("failed to send")
		return nil, err
	}
	if err := s.recordPending(ctx, accountID, res); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":   accountID,
		"chain":     chainID.String(),
		"reference": res.Reference,
	}).Info("transfer submitted")
	return res, nil
}

func (s *accountService) TopUpCanister(
	ctx context.Context, accountID, canisterID string, amount uint64,
) (*SendResult, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	res, err := s.chains.native.topUp(ctx, account.Ledger, canisterID, amount)
	if err != nil {
		return nil, err
	}
	if err := s.recordPending(ctx, accountID, res); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":  accountID,
		"canister": canisterID,
	}).Info("canister top up submitted")
	return res, nil
}

func (s *accountService) SwapBtcToBridge(
	ctx context.Context, accountID string, network btc.Network, amount uint64,
) (*SendResult, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	btcChain, err := account.Ledger.GetChain(domain.BitcoinChain(network))
	if err != nil {
		return nil, err
	}

	res, err := s.chains.bridge.swapFromBtc(ctx, account.Ledger, btcChain, amount)
	if err != nil {
		return nil, err
	}
	if err := s.recordPending(ctx, accountID, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *accountService) SwapBridgeToBtc(
	ctx context.Context, accountID string, network btc.Network,
	destination string, amount uint64,
) (*SendResult, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	res, err := s.chains.bridge.swapToBtc(
		ctx, account.Ledger, network, destination, amount,
	)
	if err != nil {
		return nil, err
	}
	if err := s.recordPending(ctx, accountID, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *accountService) SignEvmTransaction(
	ctx context.Context, accountID string, rawTx []byte, chainID uint64,
) ([]byte, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.chains.evm.signRawTransaction(ctx, account.Ledger, rawTx, chainID)
}

// CheckPending asks every pending transfer of the chain for finality and
// removes the confirmed ones, by id. Transfers removed meanwhile by another
// check are skipped. It returns the confirmed transfers.
func (s *accountService) CheckPending(
	ctx context.Context, accountID string, chainID domain.ChainID,
) ([]domain.PendingTransfer, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	chain, err := account.Ledger.GetChain(chainID)
	if err != nil {
		return nil, err
	}

	confirmed := make([]domain.PendingTransfer, 0)
	statuses := make(map[string]string)
	var checkErr error
	for _, p := range chain.Pending {
		ok, status, err := s.chains.checkPending(ctx, account.Ledger, chain, p)
		if err != nil {
			checkErr = err
			break
		}
		if ok {
			confirmed = append(confirmed, p)
			continue
		}
		if p.Bridge != nil && status != "" && status != p.Bridge.Status {
			statuses[p.ID] = status
		}
	}

	if len(confirmed) > 0 || len(statuses) > 0 {
		if err := s.repoManager.WalletRepository().UpdateWallet(
			ctx,
			func(w *domain.Wallet) (*domain.Wallet, error) {
				a, err := w.GetAccount(accountID)
				if err != nil {
					return nil, fmt.Errorf("%w: %s", ErrStateConflict, err)
				}
				for _, p := range confirmed {
					if _, err := a.Ledger.RemovePending(chainID, p.ID); err != nil {
						if errors.Is(err, domain.ErrPendingNotFound) {
							continue
						}
						return nil, err
					}
				}
				for id, status := range statuses {
					if err := a.Ledger.SetBridgeStatus(chainID, id, status); err != nil {
						if errors.Is(err, domain.ErrPendingNotFound) {
							continue
						}
						return nil, err
					}
				}
				return w, nil
			},
		); err != nil {
			return nil, err
		}

		for _, p := range confirmed {
			log.WithFields(log.Fields{
				"account": accountID,
				"chain":   chainID.String(),
				"pending": p.ID,
			}).Info("pending transfer confirmed")
			publishTransferConfirmed(s.pubsub, accountID, chainID, p)
		}
	}

	if checkErr != nil {
		log.WithError(checkErr).WithFields(log.Fields{
			"account": accountID,
			"chain":   chainID.String(),
		}).Warn("failed to check pending transfer")
		return confirmed, checkErr
	}
	return confirmed, nil
}

// RemovePending drops a pending transfer by id without asking the chain for
// its finality. Nothing is published.
func (s *accountService) RemovePending(
	ctx context.Context, accountID string, chainID domain.ChainID,
	pendingID string,
) (*domain.PendingTransfer, error) {
	var removed domain.PendingTransfer
	if err := s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			a, err := w.GetAccount(accountID)
			if err != nil {
				return nil, err
			}
			p, err := a.Ledger.RemovePending(chainID, pendingID)
			if err != nil {
				return nil, err
			}
			removed = p
			return w, nil
		},
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": accountID,
		"chain":   chainID.String(),
		"pending": pendingID,
	}).Info("pending transfer removed")
	return &removed, nil
}

// recordPending writes back the pending transfer of res, if any, on the
// latest state of the account. The bridge chain entry is created if missing.
func (s *accountService) recordPending(
	ctx context.Context, accountID string, res *SendResult,
) error {
	if res.Pending == nil {
		return nil
	}
	pending := *res.Pending

	err := s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			a, err := w.GetAccount(accountID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrStateConflict, err)
			}
			if res.Chain.Kind == domain.ChainBridge {
				if _, err := a.Ledger.GetChain(res.Chain); err != nil {
					if _, err := a.Ledger.CreateAddress(res.Chain); err != nil {
						return nil, err
					}
				}
			}
			if err := a.Ledger.AddPending(res.Chain, pending); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrStateConflict, err)
			}
			return w, nil
		},
	)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"account":   accountID,
			"chain":     res.Chain.String(),
			"reference": res.Reference,
		}).Warn("transfer submitted but pending transfer not recorded")
		return err
	}
	return nil
}

func (s *accountService) getAccount(
	ctx context.Context, accountID string,
) (*domain.Account, error) {
	wallet, err := s.repoManager.WalletRepository().GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	return wallet.GetAccount(accountID)
}
