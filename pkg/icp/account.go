package icp

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
	"strings"
)

// AccountIdentifier is the ledger address of a (principal, subaccount) pair.
type AccountIdentifier [32]byte

var accountDomainSeparator = []byte("\x0Aaccount-id")

// NewAccountIdentifier computes crc32 || sha224(sep || owner || subaccount).
func NewAccountIdentifier(owner Principal, subaccount [32]byte) AccountIdentifier {
	h := sha256.New224()
	h.Write(accountDomainSeparator)
	h.Write(owner)
	h.Write(subaccount[:])
	digest := h.Sum(nil)

	var id AccountIdentifier
	binary.BigEndian.PutUint32(id[:4], crc32.ChecksumIEEE(digest))
	copy(id[4:], digest)
	return id
}

func (a AccountIdentifier) String() string {
	return hex.EncodeToString(a[:])
}

// ICRC1Account returns the textual encoding of an ICRC-1 account. The
// default (all zero) subaccount is omitted.
func ICRC1Account(owner Principal, subaccount [32]byte) string {
	if subaccount == [32]byte{} {
		return owner.String()
	}

	buf := make([]byte, 0, len(owner)+32)
	buf = append(buf, owner...)
	buf = append(buf, subaccount[:]...)
	sum := make([]byte, 4)
	binary.BigEndian.PutUint32(sum, crc32.ChecksumIEEE(buf))
	checksum := strings.ToLower(encoding.EncodeToString(sum))

	trimmed := bytes.TrimLeft(subaccount[:], "\x00")
	sub := strings.TrimLeft(hex.EncodeToString(trimmed), "0")
	return owner.String() + "-" + checksum + "." + sub
}

// ParseAccountIdentifier decodes the hex form of an account identifier and
// verifies its checksum.
func ParseAccountIdentifier(str string) (AccountIdentifier, error) {
	var id AccountIdentifier
	b, err := hex.DecodeString(str)
	if err != nil || len(b) != len(id) {
		return id, ErrInvalidAccountIdentifier
	}
	copy(id[:], b)
	if binary.BigEndian.Uint32(id[:4]) != crc32.ChecksumIEEE(id[4:]) {
		return id, ErrInvalidAccountIdentifier
	}
	return id, nil
}
