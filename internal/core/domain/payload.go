package domain

import (
	"math/big"
	"strings"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

// OperationKind is the type of privileged action wrapped by an operation.
type OperationKind int

const (
	OperationAddSigner OperationKind = iota + 1
	OperationRemoveSigner
	OperationCreateAccount
	OperationRenameAccount
	OperationHideAccount
	OperationUnhideAccount
	OperationRemoveAccount
	OperationCreateAddress
	OperationSendToken
	OperationTopUpCanister
	OperationSwapBtcToBridge
	OperationSwapBridgeToBtc
	OperationSignEvmTransaction
	OperationUpdateSettings
	OperationUpdatePolicy
)

var operationKindNames = map[OperationKind]string{
	OperationAddSigner:          "add_signer",
	OperationRemoveSigner:       "remove_signer",
	OperationCreateAccount:      "create_account",
	OperationRenameAccount:      "rename_account",
	OperationHideAccount:        "hide_account",
	OperationUnhideAccount:      "unhide_account",
	OperationRemoveAccount:      "remove_account",
	OperationCreateAddress:      "create_address",
	OperationSendToken:          "send_token",
	OperationTopUpCanister:      "top_up_canister",
	OperationSwapBtcToBridge:    "swap_btc_to_bridge",
	OperationSwapBridgeToBtc:    "swap_bridge_to_btc",
	OperationSignEvmTransaction: "sign_evm_transaction",
	OperationUpdateSettings:     "update_settings",
	OperationUpdatePolicy:       "update_policy",
}

func (k OperationKind) String() string {
	if name, ok := operationKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// OperationKinds returns every kind, sorted.
func OperationKinds() []OperationKind {
	kinds := make([]OperationKind, 0, len(operationKindNames))
	for k := OperationAddSigner; k <= OperationUpdatePolicy; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsValid ...
func (k OperationKind) IsValid() bool {
	_, ok := operationKindNames[k]
	return ok
}

// ParseOperationKind is the inverse of OperationKind.String.
func ParseOperationKind(s string) (OperationKind, error) {
	for k, name := range operationKindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, ErrUnknownOperationKind
}

// AddSignerPayload ...
type AddSignerPayload struct {
	Signer Signer
}

// RemoveSignerPayload ...
type RemoveSignerPayload struct {
	SignerID string
}

// CreateAccountPayload ...
type CreateAccountPayload struct {
	Environment Environment
	Name        string
}

// RenameAccountPayload ...
type RenameAccountPayload struct {
	AccountID string
	Name      string
}

// AccountPayload targets an account without further arguments. It is used by
// hide, unhide and remove operations.
type AccountPayload struct {
	AccountID string
}

// CreateAddressPayload ...
type CreateAddressPayload struct {
	AccountID string
	Chain     ChainID
}

// SendTokenPayload ...
type SendTokenPayload struct {
	AccountID   string
	Chain       ChainID
	Destination string
	Amount      *big.Int
	Memo        uint64
}

// TopUpCanisterPayload converts native tokens of the account into cycles for
// the given canister.
type TopUpCanisterPayload struct {
	AccountID  string
	CanisterID string
	Amount     uint64
}

// SwapBtcToBridgePayload ...
type SwapBtcToBridgePayload struct {
	AccountID string
	Network   btc.Network
	Amount    uint64
}

// SwapBridgeToBtcPayload ...
type SwapBridgeToBtcPayload struct {
	AccountID   string
	Network     btc.Network
	Destination string
	Amount      uint64
}

// SignEvmTransactionPayload ...
type SignEvmTransactionPayload struct {
	AccountID string
	ChainID   uint64
	RawTx     []byte
}

// UpdateSettingsPayload ...
type UpdateSettingsPayload struct {
	Settings Settings
}

// UpdatePolicyPayload ...
type UpdatePolicyPayload struct {
	Kind   OperationKind
	Policy Policy
}

// Payload is the tagged union of every operation payload. Exactly the
// variant matching Kind must be set.
type Payload struct {
	Kind OperationKind

	AddSigner          *AddSignerPayload
	RemoveSigner       *RemoveSignerPayload
	CreateAccount      *CreateAccountPayload
	RenameAccount      *RenameAccountPayload
	Account            *AccountPayload
	CreateAddress      *CreateAddressPayload
	SendToken          *SendTokenPayload
	TopUpCanister      *TopUpCanisterPayload
	SwapBtcToBridge    *SwapBtcToBridgePayload
	SwapBridgeToBtc    *SwapBridgeToBtcPayload
	SignEvmTransaction *SignEvmTransactionPayload
	UpdateSettings     *UpdateSettingsPayload
	UpdatePolicy       *UpdatePolicyPayload
}

// Validate checks that the payload variant matches its kind and carries the
// mandatory fields.
func (p Payload) Validate() error {
	if !p.Kind.IsValid() {
		return ErrUnknownOperationKind
	}
	if p.variants() != 1 {
		return ErrInvalidPayload
	}

	var ok bool
	switch p.Kind {
	case OperationAddSigner:
		ok = p.AddSigner != nil && p.AddSigner.Signer.ID != "" &&
			p.AddSigner.Signer.Role.IsValid()
	case OperationRemoveSigner:
		ok = p.RemoveSigner != nil && p.RemoveSigner.SignerID != ""
	case OperationCreateAccount:
		ok = p.CreateAccount != nil && p.CreateAccount.Environment.IsValid()
	case OperationRenameAccount:
		ok = p.RenameAccount != nil && p.RenameAccount.AccountID != "" &&
			validateAccountName(p.RenameAccount.Name) == nil
	case OperationHideAccount, OperationUnhideAccount, OperationRemoveAccount:
		ok = p.Account != nil && p.Account.AccountID != ""
	case OperationCreateAddress:
		ok = p.CreateAddress != nil && p.CreateAddress.AccountID != ""
	case OperationSendToken:
		ok = p.SendToken != nil && p.SendToken.AccountID != "" &&
			p.SendToken.Destination != "" &&
			p.SendToken.Amount != nil && p.SendToken.Amount.Sign() > 0
	case OperationTopUpCanister:
		ok = p.TopUpCanister != nil && p.TopUpCanister.AccountID != "" &&
			p.TopUpCanister.CanisterID != "" && p.TopUpCanister.Amount > 0
	case OperationSwapBtcToBridge:
		ok = p.SwapBtcToBridge != nil && p.SwapBtcToBridge.AccountID != "" &&
			p.SwapBtcToBridge.Amount > 0
	case OperationSwapBridgeToBtc:
		ok = p.SwapBridgeToBtc != nil && p.SwapBridgeToBtc.AccountID != "" &&
			p.SwapBridgeToBtc.Destination != "" && p.SwapBridgeToBtc.Amount > 0
	case OperationSignEvmTransaction:
		ok = p.SignEvmTransaction != nil && p.SignEvmTransaction.AccountID != "" &&
			len(p.SignEvmTransaction.RawTx) > 0
	case OperationUpdateSettings:
		if p.UpdateSettings == nil {
			return ErrInvalidPayload
		}
		return p.UpdateSettings.Settings.Validate()
	case OperationUpdatePolicy:
		if p.UpdatePolicy == nil || !p.UpdatePolicy.Kind.IsValid() {
			return ErrInvalidPayload
		}
		return p.UpdatePolicy.Policy.Validate()
	}
	if !ok {
		return ErrInvalidPayload
	}
	return nil
}

func (p Payload) variants() int {
	count := 0
	for _, set := range []bool{
		p.AddSigner != nil,
		p.RemoveSigner != nil,
		p.CreateAccount != nil,
		p.RenameAccount != nil,
		p.Account != nil,
		p.CreateAddress != nil,
		p.SendToken != nil,
		p.TopUpCanister != nil,
		p.SwapBtcToBridge != nil,
		p.SwapBridgeToBtc != nil,
		p.SignEvmTransaction != nil,
		p.UpdateSettings != nil,
		p.UpdatePolicy != nil,
	} {
		if set {
			count++
		}
	}
	return count
}
