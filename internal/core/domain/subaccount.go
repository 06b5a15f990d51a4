package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Subaccount is the 32 bytes identifier from which an account's key is
// derived.
//
// Nonce-derived subaccounts carry the environment tag at byte 0 and the
// nonce, little-endian, at bytes 1-8. Identity-derived subaccounts carry
// the identity length at byte 0, the identity right after it, and
// identityMarker at byte 31.
type Subaccount [32]byte

// NewSubaccount derives the subaccount of the given environment and nonce.
func NewSubaccount(env Environment, nonce uint64) Subaccount {
	var s Subaccount
	s[0] = byte(env)
	binary.LittleEndian.PutUint64(s[1:9], nonce)
	return s
}

// NewSubaccountFromIdentity embeds the given identity in a subaccount.
func NewSubaccountFromIdentity(identity []byte) (Subaccount, error) {
	if len(identity) > MaxIdentityLength {
		return Subaccount{}, ErrIdentityTooLong
	}
	var s Subaccount
	s[0] = byte(len(identity))
	copy(s[1:], identity)
	s[31] = identityMarker
	return s, nil
}

// SubaccountFromBytes ...
func SubaccountFromBytes(b []byte) (Subaccount, error) {
	var s Subaccount
	if len(b) != len(s) {
		return s, ErrInvalidSubaccount
	}
	copy(s[:], b)
	return s, nil
}

// ParseSubaccount decodes a hex encoded subaccount.
func ParseSubaccount(str string) (Subaccount, error) {
	b, err := hex.DecodeString(str)
	if err != nil {
		return Subaccount{}, ErrInvalidSubaccount
	}
	return SubaccountFromBytes(b)
}

// IsIdentityDerived ...
func (s Subaccount) IsIdentityDerived() bool {
	return s[31] == identityMarker && int(s[0]) <= MaxIdentityLength
}

// Identity returns the embedded identity, nil for nonce-derived subaccounts.
func (s Subaccount) Identity() []byte {
	if !s.IsIdentityDerived() {
		return nil
	}
	return append([]byte{}, s[1:1+int(s[0])]...)
}

// Environment returns the environment encoded in the subaccount, falling
// back to Production for identity-derived or unrecognized tags.
func (s Subaccount) Environment() Environment {
	if s.IsIdentityDerived() {
		return Production
	}
	if env := Environment(s[0]); env.IsValid() {
		return env
	}
	return Production
}

// Nonce returns the nonce encoded in the subaccount, 0 if identity-derived.
func (s Subaccount) Nonce() uint64 {
	if s.IsIdentityDerived() {
		return 0
	}
	return binary.LittleEndian.Uint64(s[1:9])
}

// DerivationPath is the path sent to the external signer.
func (s Subaccount) DerivationPath() [][]byte {
	return [][]byte{append([]byte{}, s[:]...)}
}

// AccountID returns the identifier of the account owning the subaccount.
func (s Subaccount) AccountID() string {
	if s.IsIdentityDerived() {
		return "identity_" + hex.EncodeToString(s.Identity())
	}
	if s != NewSubaccount(s.Environment(), s.Nonce()) {
		return "subaccount_" + s.String()
	}

	env, nonce := s.Environment(), s.Nonce()
	switch env {
	case Staging:
		return fmt.Sprintf("staging_account_%d", nonce)
	case Development:
		return fmt.Sprintf("development_account_%d", nonce)
	default:
		if nonce == 0 {
			return DefaultAccountID
		}
		return fmt.Sprintf("account_%d", nonce)
	}
}

// IsDefault returns whether s is the production subaccount with nonce 0.
func (s Subaccount) IsDefault() bool {
	return s == NewSubaccount(Production, 0)
}

// Bytes ...
func (s Subaccount) Bytes() []byte {
	return append([]byte{}, s[:]...)
}

func (s Subaccount) String() string {
	return hex.EncodeToString(s[:])
}
