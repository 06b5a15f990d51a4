package evm

import (
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeAccessList serializes an EIP-2930 access list as
// [[address, [storage_key, ...]], ...].
func EncodeAccessList(al types.AccessList) ([]byte, error) {
	if al == nil {
		al = types.AccessList{}
	}
	return rlp.EncodeToBytes(al)
}

// DecodeAccessList is the inverse of EncodeAccessList.
func DecodeAccessList(b []byte) (types.AccessList, error) {
	var al types.AccessList
	if err := rlp.DecodeBytes(b, &al); err != nil {
		return nil, err
	}
	return al, nil
}
