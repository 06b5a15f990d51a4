package dbbadger

import (
	"context"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const walletKey = "wallet"

type walletRepositoryImpl struct {
	store *badgerhold.Store
	lock  *sync.Mutex
}

// NewWalletRepositoryImpl returns a WalletRepository backed by the given
// badgerhold store.
func NewWalletRepositoryImpl(store *badgerhold.Store) domain.WalletRepository {
	return &walletRepositoryImpl{store, &sync.Mutex{}}
}

func (r *walletRepositoryImpl) CreateWallet(
	_ context.Context, wallet *domain.Wallet,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.store.Insert(walletKey, *wallet); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExists
		}
		return err
	}
	return nil
}

func (r *walletRepositoryImpl) GetWallet(_ context.Context) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.store.Get(walletKey, &wallet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	normalizeWallet(&wallet)
	return &wallet, nil
}

// UpdateWallet reads, updates and writes the wallet back in a single badger
// transaction.
func (r *walletRepositoryImpl) UpdateWallet(
	_ context.Context, updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var wallet domain.Wallet
		if err := r.store.TxGet(tx, walletKey, &wallet); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrWalletNotFound
			}
			return err
		}
		normalizeWallet(&wallet)

		updatedWallet, err := updateFn(&wallet)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, walletKey, *updatedWallet)
	})
}

// normalizeWallet restores the empty owner principals that gob decodes as
// nil slices.
func normalizeWallet(w *domain.Wallet) {
	if w.Owner == nil {
		w.Owner = []byte{}
	}
	for _, a := range w.Accounts {
		if a.Ledger != nil && a.Ledger.Owner == nil {
			a.Ledger.Owner = []byte{}
		}
	}
}
