package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

func TestWalletRepositoryImplementations(t *testing.T) {
	repositories := newRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.name, func(t *testing.T) {
			t.Run("testCreateWallet", func(t *testing.T) {
				testCreateWallet(t, repo)
			})

			t.Run("testUpdateWallet", func(t *testing.T) {
				testUpdateWallet(t, repo)
			})

			t.Run("testUpdateWallet_rollback", func(t *testing.T) {
				testUpdateWalletRollback(t, repo)
			})
		})
	}
}

func testCreateWallet(t *testing.T, repo repoManager) {
	ctx := context.Background()
	walletRepo := repo.WalletRepository()

	_, err := walletRepo.GetWallet(ctx)
	require.ErrorIs(t, err, domain.ErrWalletNotFound)

	err = walletRepo.UpdateWallet(
		ctx, func(w *domain.Wallet) (*domain.Wallet, error) { return w, nil },
	)
	require.ErrorIs(t, err, domain.ErrWalletNotFound)

	wallet := newWallet(t)
	require.NoError(t, walletRepo.CreateWallet(ctx, wallet))
	require.ErrorIs(
		t, walletRepo.CreateWallet(ctx, newWallet(t)), domain.ErrWalletAlreadyExists,
	)

	stored, err := walletRepo.GetWallet(ctx)
	require.NoError(t, err)
	require.Equal(t, wallet.Owner, stored.Owner)
	require.NotNil(t, stored.Owner)
	require.Equal(t, wallet.OwnerPrincipal().String(), stored.OwnerPrincipal().String())
	require.Equal(
		t, wallet.Accounts[domain.DefaultAccountID].Ledger.Owner,
		stored.Accounts[domain.DefaultAccountID].Ledger.Owner,
	)
	require.Len(t, stored.Accounts, 1)
	require.Contains(t, stored.Accounts, domain.DefaultAccountID)
	require.Equal(t, uint64(1), stored.Counters[domain.Production])
}

func testUpdateWallet(t *testing.T, repo repoManager) {
	ctx := context.Background()
	walletRepo := repo.WalletRepository()
	if _, err := walletRepo.GetWallet(ctx); errors.Is(err, domain.ErrWalletNotFound) {
		require.NoError(t, walletRepo.CreateWallet(ctx, newWallet(t)))
	}

	publicKey := newPublicKey(t)
	pending := domain.NewBitcoinPending("txid", "destination", 5000)

	var accountID string
	err := walletRepo.UpdateWallet(ctx, func(w *domain.Wallet) (*domain.Wallet, error) {
		a, err := w.CreateAccount(domain.Staging, "")
		if err != nil {
			return nil, err
		}
		accountID = a.ID
		if err := a.Ledger.SetPublicKey(publicKey); err != nil {
			return nil, err
		}
		if err := a.Ledger.AddPending(domain.BitcoinChain(btc.Mainnet), pending); err != nil {
			return nil, err
		}
		if err := w.SetPolicy(domain.OperationSendToken, domain.Policy{
			Role: domain.RoleUser, Threshold: 2,
		}); err != nil {
			return nil, err
		}
		w.NextRequestID()
		return w, nil
	})
	require.NoError(t, err)

	stored, err := walletRepo.GetWallet(ctx)
	require.NoError(t, err)

	account, err := stored.GetAccount(accountID)
	require.NoError(t, err)
	require.Equal(t, publicKey, account.Ledger.PublicKey)
	require.Equal(t, domain.Staging, account.Ledger.Subaccount.Environment())

	chain, err := account.Ledger.GetChain(domain.BitcoinChain(btc.Mainnet))
	require.NoError(t, err)
	require.Len(t, chain.Pending, 1)
	require.Equal(t, pending.ID, chain.Pending[0].ID)
	require.Equal(t, pending.Bitcoin.TxID, chain.Pending[0].Bitcoin.TxID)

	_, err = account.Ledger.GetChain(domain.EvmChain(0))
	require.NoError(t, err)

	require.Equal(t, domain.Policy{Role: domain.RoleUser, Threshold: 2},
		stored.PolicyOf(domain.OperationSendToken))
	require.GreaterOrEqual(t, stored.RequestCounter, uint64(1))
	require.Equal(t, uint64(1), stored.Counters[domain.Staging])
}

func testUpdateWalletRollback(t *testing.T, repo repoManager) {
	ctx := context.Background()
	walletRepo := repo.WalletRepository()
	if _, err := walletRepo.GetWallet(ctx); errors.Is(err, domain.ErrWalletNotFound) {
		require.NoError(t, walletRepo.CreateWallet(ctx, newWallet(t)))
	}

	before, err := walletRepo.GetWallet(ctx)
	require.NoError(t, err)

	err = walletRepo.UpdateWallet(ctx, func(w *domain.Wallet) (*domain.Wallet, error) {
		if _, err := w.CreateAccount(domain.Production, "discarded"); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidAccountName
	})
	require.ErrorIs(t, err, domain.ErrInvalidAccountName)

	after, err := walletRepo.GetWallet(ctx)
	require.NoError(t, err)
	require.Len(t, after.Accounts, len(before.Accounts))
	require.Equal(t, before.Counters, after.Counters)

	// The returned copy is detached from the stored wallet.
	after.Accounts = nil
	stored, err := walletRepo.GetWallet(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Accounts, len(before.Accounts))
}
