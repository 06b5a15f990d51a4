package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressFromPublicKey derives the account address of a compressed secp256k1
// public key: the last 20 bytes of keccak256 over the uncompressed point.
func AddressFromPublicKey(publicKey []byte) (common.Address, error) {
	if len(publicKey) != 33 {
		return common.Address{}, ErrInvalidPublicKeyLength
	}
	key, err := crypto.DecompressPubkey(publicKey)
	if err != nil {
		return common.Address{}, ErrInvalidPublicKey
	}
	return crypto.PubkeyToAddress(*key), nil
}
