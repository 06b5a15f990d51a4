package ports

import "github.com/tdex-network/custody-daemon/internal/core/domain"

// RepoManager gives access to every repository of the daemon.
type RepoManager interface {
	WalletRepository() domain.WalletRepository
	OperationRepository() domain.OperationRepository

	Close()
}
