package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

type walletRepositoryImpl struct {
	wallet *domain.Wallet
	locker *sync.Mutex
}

// NewWalletRepositoryImpl returns a new inmemory WalletRepository
// implementation.
func NewWalletRepositoryImpl() domain.WalletRepository {
	return &walletRepositoryImpl{
		locker: &sync.Mutex{},
	}
}

func (r *walletRepositoryImpl) CreateWallet(
	_ context.Context, wallet *domain.Wallet,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.wallet != nil {
		return domain.ErrWalletAlreadyExists
	}
	r.wallet = wallet.Clone()
	return nil
}

func (r *walletRepositoryImpl) GetWallet(_ context.Context) (*domain.Wallet, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.wallet == nil {
		return nil, domain.ErrWalletNotFound
	}
	return r.wallet.Clone(), nil
}

// UpdateWallet applies updateFn to a copy of the wallet so that nothing is
// changed if it fails.
func (r *walletRepositoryImpl) UpdateWallet(
	_ context.Context, updateFn func(w *domain.Wallet) (*domain.Wallet, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if r.wallet == nil {
		return domain.ErrWalletNotFound
	}

	updatedWallet, err := updateFn(r.wallet.Clone())
	if err != nil {
		return err
	}
	r.wallet = updatedWallet.Clone()
	return nil
}
