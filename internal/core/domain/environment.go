package domain

import "strings"

// Environment selects the signing key and fee budget of the external signer
// and is encoded in the first byte of nonce-derived subaccounts.
type Environment uint8

const (
	Production  Environment = 32
	Staging     Environment = 16
	Development Environment = 8
)

type environmentParams struct {
	name       string
	keyID      string
	signCycles uint64
}

var environments = map[Environment]environmentParams{
	Production:  {"production", "key_1", 26_153_846_153},
	Staging:     {"staging", "test_key_1", 10_000_000_000},
	Development: {"development", "dfx_test_key", 10_000_000_000},
}

// Environments lists every supported environment.
func Environments() []Environment {
	return []Environment{Production, Staging, Development}
}

func (e Environment) String() string {
	if p, ok := environments[e]; ok {
		return p.name
	}
	return "unknown"
}

// KeyID is the identifier of the threshold key used by the environment.
func (e Environment) KeyID() string {
	return environments[e].keyID
}

// SignCycles is the fee budget attached to every signer call.
func (e Environment) SignCycles() uint64 {
	return environments[e].signCycles
}

// IsValid ...
func (e Environment) IsValid() bool {
	_, ok := environments[e]
	return ok
}

// ParseEnvironment is the inverse of Environment.String.
func ParseEnvironment(s string) (Environment, error) {
	for env, p := range environments {
		if strings.EqualFold(p.name, s) {
			return env, nil
		}
	}
	return 0, ErrUnknownEnvironment
}
