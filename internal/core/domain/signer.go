package domain

import (
	"sort"
	"strings"
)

// Role of a signer. Higher roles include the lower ones.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// IsValid ...
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, ErrInvalidRole
	}
}

// Signer is an identity allowed to propose and approve operations.
type Signer struct {
	ID   string
	Name string
	Role Role
}

// Policy sets who can approve an operation kind and how many approvals it
// needs. A zero Threshold means every eligible signer must approve.
type Policy struct {
	Role      Role
	Threshold int
}

// DefaultPolicy requires the approval of every admin.
var DefaultPolicy = Policy{Role: RoleAdmin}

// Validate ...
func (p Policy) Validate() error {
	if !p.Role.IsValid() || p.Threshold < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// Settings are the wallet level parameters editable through operations.
type Settings struct {
	Controllers []string
	Metadata    map[string]string
}

// Validate ...
func (s Settings) Validate() error {
	if len(s.Controllers) > MaxControllers {
		return ErrTooManyControllers
	}
	return nil
}

func (s Settings) clone() Settings {
	cpy := Settings{
		Controllers: append([]string{}, s.Controllers...),
		Metadata:    make(map[string]string, len(s.Metadata)),
	}
	for k, v := range s.Metadata {
		cpy.Metadata[k] = v
	}
	return cpy
}

// eligibleSigners returns the sorted ids of the signers with at least the
// given role.
func eligibleSigners(signers map[string]*Signer, role Role) []string {
	ids := make([]string, 0, len(signers))
	for id, s := range signers {
		if s.Role >= role {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
