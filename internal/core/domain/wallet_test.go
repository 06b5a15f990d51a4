package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const adminID = "admin"

func newTestWallet(t *testing.T) *domain.Wallet {
	w, err := domain.NewWallet(icp.ManagementCanister, adminID, "Admin")
	require.NoError(t, err)
	return w
}

func TestNewWallet(t *testing.T) {
	w := newTestWallet(t)

	account, err := w.GetAccount(domain.DefaultAccountID)
	require.NoError(t, err)
	require.True(t, account.IsDefault())
	require.Equal(t, domain.DefaultAccountName, account.Name)

	require.Equal(t, uint64(1), w.Counters[domain.Production])
	require.Zero(t, w.Counters[domain.Staging])
	require.Zero(t, w.Counters[domain.Development])

	signer, err := w.GetSigner(adminID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, signer.Role)
	require.Equal(t, []string{adminID}, w.Settings.Controllers)
}

func TestWalletCreateAccount(t *testing.T) {
	w := newTestWallet(t)

	sub, err := w.NewSubaccount(domain.Production)
	require.NoError(t, err)
	require.Equal(t, uint64(1), sub.Nonce())
	// Allocating a subaccount doesn't burn the nonce.
	again, err := w.NewSubaccount(domain.Production)
	require.NoError(t, err)
	require.Equal(t, sub, again)

	account, err := w.CreateAccount(domain.Production, "")
	require.NoError(t, err)
	require.Equal(t, "account_1", account.ID)
	require.Equal(t, "Account 1", account.Name)
	require.Equal(t, uint64(2), w.Counters[domain.Production])

	staging, err := w.CreateAccount(domain.Staging, "savings")
	require.NoError(t, err)
	require.Equal(t, "staging_account_0", staging.ID)
	require.Equal(t, uint64(1), w.Counters[domain.Staging])

	_, err = w.CreateAccount(domain.Environment(3), "")
	require.ErrorIs(t, err, domain.ErrUnknownEnvironment)
}

func TestWalletRemoveAccount(t *testing.T) {
	w := newTestWallet(t)

	account, err := w.CreateAccount(domain.Production, "")
	require.NoError(t, err)

	require.ErrorIs(
		t, w.RemoveAccount(domain.DefaultAccountID),
		domain.ErrCannotRemoveDefaultAccount,
	)
	require.NoError(t, w.RemoveAccount(account.ID))
	require.ErrorIs(t, w.RemoveAccount(account.ID), domain.ErrAccountNotFound)

	// Nonces are never reused.
	next, err := w.CreateAccount(domain.Production, "")
	require.NoError(t, err)
	require.Equal(t, "account_2", next.ID)
}

func TestWalletRestoreAccount(t *testing.T) {
	w := newTestWallet(t)

	sub := domain.NewSubaccount(domain.Production, 5)
	account, err := w.RestoreAccount(sub, "restored")
	require.NoError(t, err)
	require.Equal(t, "account_5", account.ID)
	require.Equal(t, uint64(6), w.Counters[domain.Production])

	_, err = w.RestoreAccount(sub, "restored")
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	_, err = w.RestoreAccount(domain.NewSubaccount(domain.Production, 0), "")
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	identitySub, err := domain.NewSubaccountFromIdentity([]byte{0x01})
	require.NoError(t, err)
	identityAccount, err := w.RestoreAccount(identitySub, "")
	require.NoError(t, err)
	require.Equal(t, "identity_01", identityAccount.ID)
	require.Equal(t, uint64(6), w.Counters[domain.Production])
}

func TestWalletListAccounts(t *testing.T) {
	w := newTestWallet(t)
	account, err := w.CreateAccount(domain.Production, "")
	require.NoError(t, err)

	require.Len(t, w.ListAccounts(false), 2)
	account.Hide()
	require.Len(t, w.ListAccounts(false), 1)
	require.Len(t, w.ListAccounts(true), 2)
	account.Unhide()
	require.Len(t, w.ListAccounts(false), 2)

	require.ErrorIs(t, account.Rename(""), domain.ErrInvalidAccountName)
	require.NoError(t, account.Rename("renamed"))
	require.Equal(t, "renamed", account.Name)
}

func TestWalletSigners(t *testing.T) {
	w := newTestWallet(t)

	require.ErrorIs(
		t, w.AddSigner(domain.Signer{ID: adminID, Role: domain.RoleUser}),
		domain.ErrSignerAlreadyExists,
	)
	require.ErrorIs(
		t, w.AddSigner(domain.Signer{ID: "bob", Role: domain.Role(9)}),
		domain.ErrInvalidRole,
	)
	require.NoError(t, w.AddSigner(domain.Signer{ID: "bob", Role: domain.RoleUser}))
	require.Len(t, w.ListSigners(), 2)

	allowed, required, err := w.Approvers(domain.OperationAddSigner)
	require.NoError(t, err)
	require.Equal(t, []string{adminID}, allowed)
	require.Equal(t, 1, required)

	require.NoError(t, w.SetPolicy(domain.OperationSendToken, domain.Policy{Role: domain.RoleUser, Threshold: 5}))
	allowed, required, err = w.Approvers(domain.OperationSendToken)
	require.NoError(t, err)
	require.Equal(t, []string{adminID, "bob"}, allowed)
	require.Equal(t, 2, required)

	require.ErrorIs(t, w.RemoveSigner(adminID), domain.ErrCannotRemoveLastAdmin)
	require.NoError(t, w.RemoveSigner("bob"))
	require.ErrorIs(t, w.RemoveSigner("bob"), domain.ErrSignerNotFound)
}

func TestWalletSettings(t *testing.T) {
	w := newTestWallet(t)

	controllers := make([]string, domain.MaxControllers+1)
	for i := range controllers {
		controllers[i] = randomID()
	}
	err := w.UpdateSettings(domain.Settings{Controllers: controllers})
	require.ErrorIs(t, err, domain.ErrTooManyControllers)

	require.NoError(t, w.UpdateSettings(domain.Settings{
		Controllers: controllers[:domain.MaxControllers],
		Metadata:    map[string]string{"name": "treasury"},
	}))
	require.Len(t, w.Settings.Controllers, domain.MaxControllers)
	require.Equal(t, "treasury", w.Settings.Metadata["name"])
}

func TestWalletClone(t *testing.T) {
	w := newTestWallet(t)
	cpy := w.Clone()
	require.Equal(t, w, cpy)

	_, err := cpy.CreateAccount(domain.Production, "")
	require.NoError(t, err)
	require.Len(t, w.Accounts, 1)
	require.Equal(t, uint64(1), w.Counters[domain.Production])
}
