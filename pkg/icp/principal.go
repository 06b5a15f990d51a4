package icp

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strings"
)

var (
	// ErrInvalidPrincipal ...
	ErrInvalidPrincipal = errors.New("invalid principal text")
	// ErrPrincipalTooLong ...
	ErrPrincipalTooLong = errors.New("principal must be at most 29 bytes long")
	// ErrInvalidChecksum ...
	ErrInvalidChecksum = errors.New("principal checksum mismatch")
	// ErrInvalidAccountIdentifier ...
	ErrInvalidAccountIdentifier = errors.New("invalid account identifier")
)

// MaxPrincipalLength is the max number of bytes of a principal.
const MaxPrincipalLength = 29

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is the opaque binary identity of a user or canister.
type Principal []byte

// ManagementCanister is the principal whose text form is aaaaa-aa.
var ManagementCanister = Principal{}

// ParsePrincipal decodes the dash-separated, checksummed textual form.
func ParsePrincipal(text string) (Principal, error) {
	raw := strings.ToUpper(strings.ReplaceAll(text, "-", ""))
	decoded, err := encoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidPrincipal
	}
	if len(decoded) < 4 {
		return nil, ErrInvalidPrincipal
	}
	p := Principal(decoded[4:])
	if len(p) > MaxPrincipalLength {
		return nil, ErrPrincipalTooLong
	}
	if binary.BigEndian.Uint32(decoded[:4]) != crc32.ChecksumIEEE(p) {
		return nil, ErrInvalidChecksum
	}
	if p.String() != text {
		return nil, ErrInvalidPrincipal
	}
	return p, nil
}

// String returns the textual form of the principal.
func (p Principal) String() string {
	buf := make([]byte, 4, 4+len(p))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(p))
	buf = append(buf, p...)
	return group(strings.ToLower(encoding.EncodeToString(buf)))
}

func group(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 5
		if end > len(s) {
			end = len(s)
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}
