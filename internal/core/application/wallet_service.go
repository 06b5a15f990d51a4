package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// WalletService initializes the wallet and exposes its global state.
type WalletService interface {
	InitWallet(ctx context.Context, adminID, adminName string) error
	GetInfo(ctx context.Context) (*WalletInfo, error)
	ListSigners(ctx context.Context) ([]domain.Signer, error)
}

type walletService struct {
	repoManager ports.RepoManager
	owner       icp.Principal
}

// NewWalletService ...
func NewWalletService(
	repoManager ports.RepoManager, owner icp.Principal,
) (WalletService, error) {
	if repoManager == nil {
		return nil, ErrMissingCollaborator
	}
	return &walletService{repoManager, owner}, nil
}

// InitWallet creates the wallet, with its default account, and registers the
// given identity as first admin signer.
func (s *walletService) InitWallet(
	ctx context.Context, adminID, adminName string,
) error {
	wallet, err := domain.NewWallet(s.owner, adminID, adminName)
	if err != nil {
		return err
	}
	if err := s.repoManager.WalletRepository().CreateWallet(ctx, wallet); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"owner": s.owner.String(),
		"admin": adminID,
	}).Info("wallet initialized")
	return nil
}

func (s *walletService) GetInfo(ctx context.Context) (*WalletInfo, error) {
	w, err := s.repoManager.WalletRepository().GetWallet(ctx)
	if err != nil {
		return nil, err
	}

	policies := make(map[domain.OperationKind]domain.Policy)
	for _, kind := range domain.OperationKinds() {
		policies[kind] = w.PolicyOf(kind)
	}
	counters := make(map[domain.Environment]uint64, len(w.Counters))
	for env, n := range w.Counters {
		counters[env] = n
	}

	return &WalletInfo{
		Owner:          w.OwnerPrincipal().String(),
		Accounts:       len(w.Accounts),
		RequestCounter: w.RequestCounter,
		Counters:       counters,
		Signers:        w.ListSigners(),
		Settings:       w.Settings,
		Policies:       policies,
	}, nil
}

func (s *walletService) ListSigners(ctx context.Context) ([]domain.Signer, error) {
	w, err := s.repoManager.WalletRepository().GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	return w.ListSigners(), nil
}
