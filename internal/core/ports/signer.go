package ports

import "context"

// SignerKey identifies a key of the external threshold signer and the fee
// budget attached to every request made with it.
type SignerKey struct {
	KeyID          string
	DerivationPath [][]byte
	Cycles         uint64
}

// Signer is the external threshold ECDSA signer. PublicKey returns a 33
// bytes compressed key, Sign a 64 bytes compact r||s signature over a 32
// bytes message hash.
type Signer interface {
	PublicKey(ctx context.Context, key SignerKey) ([]byte, error)
	Sign(ctx context.Context, key SignerKey, messageHash []byte) ([]byte, error)
}
