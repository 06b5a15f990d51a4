package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeInt returns the RLP string item holding the minimal big-endian form
// of x. Zero (and nil) is encoded as the empty string.
func EncodeInt(x *big.Int) []byte {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	w.WriteBigInt(bigOrZero(x))
	return w.ToBytes()
}

// DecodeInt parses an RLP string item as an unsigned big-endian integer.
// The empty string decodes to zero.
func DecodeInt(item []byte) (*big.Int, error) {
	content, err := DecodeBytes(item)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(content), nil
}

// EncodeBytes returns the RLP string item holding b.
func EncodeBytes(b []byte) []byte {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	w.WriteBytes(b)
	return w.ToBytes()
}

// DecodeBytes returns the content of the given RLP string item.
func DecodeBytes(item []byte) ([]byte, error) {
	kind, content, rest, err := rlp.Split(item)
	if err != nil {
		return nil, err
	}
	if kind == rlp.List {
		return nil, ErrExpectedString
	}
	if len(rest) > 0 {
		return nil, ErrTrailingBytes
	}
	return content, nil
}

// rawItem is a single element of a decoded RLP list. For string items
// content is the payload, for nested lists raw is the full encoding.
type rawItem struct {
	kind    rlp.Kind
	content []byte
	raw     []byte
}

func (i rawItem) bigInt() (*big.Int, error) {
	if i.kind == rlp.List {
		return nil, ErrExpectedString
	}
	return new(big.Int).SetBytes(i.content), nil
}

func (i rawItem) uint64() (uint64, error) {
	n, err := i.bigInt()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, ErrUint64Overflow
	}
	return n.Uint64(), nil
}

func (i rawItem) bytes() ([]byte, error) {
	if i.kind == rlp.List {
		return nil, ErrExpectedString
	}
	if len(i.content) == 0 {
		return nil, nil
	}
	return append([]byte{}, i.content...), nil
}

// splitList splits an RLP list into its top level items, rejecting any
// data following the list.
func splitList(b []byte) ([]rawItem, error) {
	content, rest, err := rlp.SplitList(b)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrTrailingBytes
	}

	items := make([]rawItem, 0)
	for len(content) > 0 {
		kind, val, tail, err := rlp.Split(content)
		if err != nil {
			return nil, err
		}
		items = append(items, rawItem{
			kind:    kind,
			content: val,
			raw:     content[:len(content)-len(tail)],
		})
		content = tail
	}
	return items, nil
}

func bigOrZero(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return x
}
