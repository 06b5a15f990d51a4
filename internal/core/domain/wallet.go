package domain

import (
	"fmt"
	"sort"

	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// Wallet is the aggregate root holding every account, the per environment
// nonce counters, the signers allowed to operate the wallet and their
// policies.
type Wallet struct {
	Owner          []byte
	Accounts       map[string]*Account
	Counters       map[Environment]uint64
	RequestCounter uint64
	Signers        map[string]*Signer
	Policies       map[OperationKind]Policy
	Settings       Settings
}

// NewWallet returns a wallet with the default account and with the given
// identity registered as its first admin signer.
func NewWallet(owner icp.Principal, adminID, adminName string) (*Wallet, error) {
	w := &Wallet{
		Owner:    append([]byte{}, owner...),
		Accounts: make(map[string]*Account),
		Counters: make(map[Environment]uint64),
		Signers:  make(map[string]*Signer),
		Policies: make(map[OperationKind]Policy),
		Settings: Settings{
			Controllers: []string{adminID},
			Metadata:    make(map[string]string),
		},
	}
	for _, env := range Environments() {
		w.Counters[env] = 0
	}

	if err := w.AddSigner(Signer{ID: adminID, Name: adminName, Role: RoleAdmin}); err != nil {
		return nil, err
	}

	ledger := NewLedger(owner, NewSubaccount(Production, 0))
	if _, err := w.InsertAccount(ledger, DefaultAccountName); err != nil {
		return nil, err
	}
	return w, nil
}

// OwnerPrincipal ...
func (w *Wallet) OwnerPrincipal() icp.Principal {
	return icp.Principal(w.Owner)
}

// NewSubaccount returns the next subaccount of the given environment. The
// counter is bumped only once an account using it is inserted.
func (w *Wallet) NewSubaccount(env Environment) (Subaccount, error) {
	if !env.IsValid() {
		return Subaccount{}, ErrUnknownEnvironment
	}
	return NewSubaccount(env, w.Counters[env]), nil
}

// InsertAccount adds an account for the given ledger. An empty name is
// replaced by one derived from the subaccount nonce.
func (w *Wallet) InsertAccount(ledger *Ledger, name string) (*Account, error) {
	sub := ledger.Subaccount
	if name == "" {
		name = fmt.Sprintf("Account %d", sub.Nonce())
		if sub.IsIdentityDerived() {
			name = "Identity account"
		}
	}

	account, err := NewAccount(ledger, name)
	if err != nil {
		return nil, err
	}
	if _, ok := w.Accounts[account.ID]; ok {
		return nil, ErrAccountAlreadyExists
	}
	w.Accounts[account.ID] = account

	if !sub.IsIdentityDerived() {
		env := sub.Environment()
		if next := sub.Nonce() + 1; next > w.Counters[env] {
			w.Counters[env] = next
		}
	}
	return account, nil
}

// CreateAccount allocates the next subaccount of env and inserts a new
// account for it.
func (w *Wallet) CreateAccount(env Environment, name string) (*Account, error) {
	sub, err := w.NewSubaccount(env)
	if err != nil {
		return nil, err
	}
	return w.InsertAccount(NewLedger(w.Owner, sub), name)
}

// RestoreAccount registers again the account of a known subaccount.
func (w *Wallet) RestoreAccount(sub Subaccount, name string) (*Account, error) {
	return w.InsertAccount(NewLedger(w.Owner, sub), name)
}

// GetAccount ...
func (w *Wallet) GetAccount(id string) (*Account, error) {
	account, ok := w.Accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// RemoveAccount drops the account. Its nonce is never reused.
func (w *Wallet) RemoveAccount(id string) error {
	account, err := w.GetAccount(id)
	if err != nil {
		return err
	}
	if account.IsDefault() {
		return ErrCannotRemoveDefaultAccount
	}
	delete(w.Accounts, id)
	return nil
}

// ListAccounts returns the accounts sorted by id, hidden ones included only
// if requested.
func (w *Wallet) ListAccounts(withHidden bool) []*Account {
	accounts := make([]*Account, 0, len(w.Accounts))
	for _, a := range w.Accounts {
		if a.Hidden && !withHidden {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts
}

// NextRequestID increments and returns the global request counter.
func (w *Wallet) NextRequestID() uint64 {
	w.RequestCounter++
	return w.RequestCounter
}

// AddSigner ...
func (w *Wallet) AddSigner(s Signer) error {
	if s.ID == "" {
		return ErrInvalidPayload
	}
	if !s.Role.IsValid() {
		return ErrInvalidRole
	}
	if _, ok := w.Signers[s.ID]; ok {
		return ErrSignerAlreadyExists
	}
	w.Signers[s.ID] = &Signer{ID: s.ID, Name: s.Name, Role: s.Role}
	return nil
}

// RemoveSigner ...
func (w *Wallet) RemoveSigner(id string) error {
	signer, ok := w.Signers[id]
	if !ok {
		return ErrSignerNotFound
	}
	if signer.Role == RoleAdmin && len(eligibleSigners(w.Signers, RoleAdmin)) == 1 {
		return ErrCannotRemoveLastAdmin
	}
	delete(w.Signers, id)
	return nil
}

// GetSigner ...
func (w *Wallet) GetSigner(id string) (*Signer, error) {
	signer, ok := w.Signers[id]
	if !ok {
		return nil, ErrSignerNotFound
	}
	return signer, nil
}

// ListSigners returns the signers sorted by id.
func (w *Wallet) ListSigners() []Signer {
	ids := eligibleSigners(w.Signers, RoleUser)
	signers := make([]Signer, 0, len(ids))
	for _, id := range ids {
		signers = append(signers, *w.Signers[id])
	}
	return signers
}

// PolicyOf returns the policy of the operation kind, DefaultPolicy if none
// was set.
func (w *Wallet) PolicyOf(kind OperationKind) Policy {
	if p, ok := w.Policies[kind]; ok {
		return p
	}
	return DefaultPolicy
}

// SetPolicy ...
func (w *Wallet) SetPolicy(kind OperationKind, p Policy) error {
	if !kind.IsValid() {
		return ErrUnknownOperationKind
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if w.Policies == nil {
		w.Policies = make(map[OperationKind]Policy)
	}
	w.Policies[kind] = p
	return nil
}

// Approvers returns the sorted ids of the signers allowed to approve an
// operation of the given kind and the number of approvals required.
func (w *Wallet) Approvers(kind OperationKind) ([]string, int, error) {
	policy := w.PolicyOf(kind)
	allowed := eligibleSigners(w.Signers, policy.Role)
	if len(allowed) == 0 {
		return nil, 0, ErrNoEligibleSigners
	}
	required := len(allowed)
	if policy.Threshold > 0 && policy.Threshold < required {
		required = policy.Threshold
	}
	return allowed, required, nil
}

// UpdateSettings replaces the wallet settings.
func (w *Wallet) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.Settings = s.clone()
	return nil
}

// Clone returns a deep copy of the wallet.
func (w *Wallet) Clone() *Wallet {
	cpy := &Wallet{
		Owner:          append([]byte{}, w.Owner...),
		Accounts:       make(map[string]*Account, len(w.Accounts)),
		Counters:       make(map[Environment]uint64, len(w.Counters)),
		RequestCounter: w.RequestCounter,
		Signers:        make(map[string]*Signer, len(w.Signers)),
		Policies:       make(map[OperationKind]Policy, len(w.Policies)),
		Settings:       w.Settings.clone(),
	}
	for id, a := range w.Accounts {
		cpy.Accounts[id] = a.Clone()
	}
	for env, c := range w.Counters {
		cpy.Counters[env] = c
	}
	for id, s := range w.Signers {
		v := *s
		cpy.Signers[id] = &v
	}
	for kind, p := range w.Policies {
		cpy.Policies[kind] = p
	}
	return cpy
}
