package evm

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"
)

// RecoveryID returns the id in [0, candidates) for which recovering the
// 64-byte signature over hash yields the given compressed public key.
func RecoveryID(hash, sig, publicKey []byte, candidates int) (byte, error) {
	if len(sig) != 64 {
		return 0, ErrInvalidSignatureLength
	}
	if len(hash) != 32 {
		return 0, ErrInvalidMessageLength
	}
	if len(publicKey) != 33 {
		return 0, ErrInvalidPublicKeyLength
	}

	key, err := crypto.DecompressPubkey(publicKey)
	if err != nil {
		return 0, ErrInvalidPublicKey
	}
	expected := crypto.FromECDSAPub(key)

	buf := make([]byte, 65)
	copy(buf, sig)
	for id := 0; id < candidates; id++ {
		buf[64] = byte(id)
		recovered, err := crypto.Ecrecover(hash, buf)
		if err != nil {
			continue
		}
		if bytes.Equal(recovered, expected) {
			return byte(id), nil
		}
	}
	return 0, ErrRecoveryIDNotFound
}

// SignWith attaches an externally produced signature to tx, working out the
// recovery id from the signer public key. It returns the signed envelope.
func SignWith(tx *Transaction, sig, publicKey []byte) (*Transaction, error) {
	candidates := 2
	if tx.Type == LegacyTxType {
		candidates = 4
	}

	hash := tx.SigningHash()
	recoveryID, err := RecoveryID(hash.Bytes(), sig, publicKey, candidates)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(sig, recoveryID)
}
