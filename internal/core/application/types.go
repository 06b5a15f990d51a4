package application

import (
	"encoding/hex"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// SendResult is the outcome of a transfer submitted to a chain. Pending is
// set when the transfer needs a later confirmation.
type SendResult struct {
	Chain     domain.ChainID
	Reference string
	Fee       uint64
	Pending   *domain.PendingTransfer
}

// ChainInfo ...
type ChainInfo struct {
	ID      domain.ChainID
	Address string
	Pending []domain.PendingTransfer
}

// AccountInfo is a read only view of an account.
type AccountInfo struct {
	ID             string
	Name           string
	Hidden         bool
	Environment    domain.Environment
	Subaccount     string
	DerivationPath []string
	PublicKey      string
	Chains         []ChainInfo
}

func newAccountInfo(a *domain.Account) AccountInfo {
	sub := a.Ledger.Subaccount
	path := make([]string, 0, 1)
	for _, p := range sub.DerivationPath() {
		path = append(path, hex.EncodeToString(p))
	}

	chains := make([]ChainInfo, 0, len(a.Ledger.Chains))
	for _, c := range a.Ledger.ListChains() {
		chains = append(chains, ChainInfo{
			ID:      c.ID,
			Address: c.Address,
			Pending: c.Pending,
		})
	}

	return AccountInfo{
		ID:             a.ID,
		Name:           a.Name,
		Hidden:         a.Hidden,
		Environment:    sub.Environment(),
		Subaccount:     sub.String(),
		DerivationPath: path,
		PublicKey:      hex.EncodeToString(a.Ledger.PublicKey),
		Chains:         chains,
	}
}

// WalletInfo ...
type WalletInfo struct {
	Owner          string
	Accounts       int
	RequestCounter uint64
	Counters       map[domain.Environment]uint64
	Signers        []domain.Signer
	Settings       domain.Settings
	Policies       map[domain.OperationKind]domain.Policy
}
