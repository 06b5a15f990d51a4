package inmemory

import (
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

type RepoManager struct {
	walletRepository    domain.WalletRepository
	operationRepository domain.OperationRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		walletRepository:    NewWalletRepositoryImpl(),
		operationRepository: NewOperationRepositoryImpl(),
	}
}

func (d *RepoManager) WalletRepository() domain.WalletRepository {
	return d.walletRepository
}

func (d *RepoManager) OperationRepository() domain.OperationRepository {
	return d.operationRepository
}

func (d *RepoManager) Close() {}
