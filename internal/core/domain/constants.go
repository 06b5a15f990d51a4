package domain

const (
	// MaxIdentityLength is the max length of an identity embedded in a
	// subaccount.
	MaxIdentityLength = 29
	// MaxControllers ...
	MaxControllers = 10
	// MaxAccountNameLength ...
	MaxAccountNameLength = 64

	// DefaultAccountID is the id of the account derived from the production
	// nonce 0.
	DefaultAccountID   = "-default"
	DefaultAccountName = "Main"

	identityMarker = 0x7f
)
