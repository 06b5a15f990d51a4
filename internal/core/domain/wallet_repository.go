package domain

import "context"

// WalletRepository is the abstraction for any kind of database intended to
// persist the Wallet aggregate.
type WalletRepository interface {
	// CreateWallet stores the wallet, failing if one already exists.
	CreateWallet(ctx context.Context, wallet *Wallet) error
	// GetWallet returns a copy of the stored wallet. Changes to it are not
	// persisted unless written back through UpdateWallet.
	GetWallet(ctx context.Context) (*Wallet, error)
	// UpdateWallet reads the latest stored wallet, applies updateFn and
	// writes the result back atomically. updateFn must re-validate any
	// precondition it relies on.
	UpdateWallet(
		ctx context.Context, updateFn func(w *Wallet) (*Wallet, error),
	) error
}
