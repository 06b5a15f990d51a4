package domain

import "unicode/utf8"

// Account is a named, optionally hidden, ledger of the wallet.
type Account struct {
	ID     string
	Name   string
	Hidden bool
	Ledger *Ledger
}

// NewAccount ...
func NewAccount(ledger *Ledger, name string) (*Account, error) {
	if err := validateAccountName(name); err != nil {
		return nil, err
	}
	return &Account{
		ID:     ledger.Subaccount.AccountID(),
		Name:   name,
		Ledger: ledger,
	}, nil
}

// Rename ...
func (a *Account) Rename(name string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}
	a.Name = name
	return nil
}

// Hide ...
func (a *Account) Hide() {
	a.Hidden = true
}

// Unhide ...
func (a *Account) Unhide() {
	a.Hidden = false
}

// IsDefault ...
func (a *Account) IsDefault() bool {
	return a.Ledger.Subaccount.IsDefault()
}

// Clone ...
func (a *Account) Clone() *Account {
	cpy := *a
	cpy.Ledger = a.Ledger.Clone()
	return &cpy
}

func validateAccountName(name string) error {
	if l := utf8.RuneCountInString(name); l == 0 || l > MaxAccountNameLength {
		return ErrInvalidAccountName
	}
	return nil
}
