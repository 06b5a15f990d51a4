package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// TxType identifies the envelope of an EVM transaction.
type TxType byte

const (
	LegacyTxType     TxType = 0x00
	AccessListTxType TxType = 0x01
	DynamicFeeTxType TxType = 0x02
)

func (t TxType) String() string {
	switch t {
	case LegacyTxType:
		return "legacy"
	case AccessListTxType:
		return "eip2930"
	case DynamicFeeTxType:
		return "eip1559"
	default:
		return "unknown"
	}
}

// Transaction is the union of the supported transaction envelopes. Fields
// not carried by a given type are left nil/zero. V, R and S are nil until
// the transaction is signed.
type Transaction struct {
	Type       TxType
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList

	V *big.Int
	R *big.Int
	S *big.Int
}

// DetectTxType dispatches on the first byte of a raw transaction: an RLP list
// marker means legacy, 0x01 and 0x02 are the typed envelopes.
func DetectTxType(raw []byte) (TxType, error) {
	if len(raw) == 0 {
		return 0, ErrEmptyTransaction
	}
	switch b := raw[0]; {
	case b >= 0xc0:
		return LegacyTxType, nil
	case b == byte(AccessListTxType):
		return AccessListTxType, nil
	case b == byte(DynamicFeeTxType):
		return DynamicFeeTxType, nil
	default:
		return 0, ErrInvalidTransactionType
	}
}

// DecodeTransaction parses either the unsigned or the signed encoding of any
// supported transaction type.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	txType, err := DetectTxType(raw)
	if err != nil {
		return nil, err
	}

	switch txType {
	case LegacyTxType:
		return decodeLegacy(raw)
	case AccessListTxType:
		return decodeAccessListTx(raw[1:])
	default:
		return decodeDynamicFeeTx(raw[1:])
	}
}

// IsSigned returns whether the tx carries a non empty signature.
func (tx *Transaction) IsSigned() bool {
	return tx.R != nil && tx.S != nil && (tx.R.Sign() != 0 || tx.S.Sign() != 0)
}

// EncodeUnsigned returns the payload whose keccak hash gets signed. Legacy
// transactions with a non zero chain id follow EIP-155.
func (tx *Transaction) EncodeUnsigned() []byte {
	return tx.encode(false)
}

// EncodeSigned returns the broadcastable encoding of a signed tx.
func (tx *Transaction) EncodeSigned() ([]byte, error) {
	if !tx.IsSigned() {
		return nil, ErrTransactionNotSigned
	}
	return tx.encode(true), nil
}

// SigningHash returns keccak256 of the unsigned encoding.
func (tx *Transaction) SigningHash() common.Hash {
	return crypto.Keccak256Hash(tx.EncodeUnsigned())
}

// Hash returns the transaction hash, only meaningful once signed.
func (tx *Transaction) Hash() (common.Hash, error) {
	raw, err := tx.EncodeSigned()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(raw), nil
}

// WithSignature returns a copy of tx carrying the given 64-byte r||s
// signature and recovery id.
func (tx *Transaction) WithSignature(sig []byte, recoveryID byte) (*Transaction, error) {
	if len(sig) != 64 {
		return nil, ErrInvalidSignatureLength
	}
	cpy := *tx
	cpy.R = new(big.Int).SetBytes(sig[:32])
	cpy.S = new(big.Int).SetBytes(sig[32:])

	v := new(big.Int).SetUint64(uint64(recoveryID))
	if tx.Type == LegacyTxType {
		if chainID := bigOrZero(tx.ChainID); chainID.Sign() > 0 {
			v.Add(v, new(big.Int).Mul(chainID, big.NewInt(2)))
			v.Add(v, big.NewInt(35))
		} else {
			v.Add(v, big.NewInt(27))
		}
	}
	cpy.V = v
	return &cpy, nil
}

func (tx *Transaction) encode(signed bool) []byte {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()

	list := w.List()
	switch tx.Type {
	case LegacyTxType:
		w.WriteUint64(tx.Nonce)
		w.WriteBigInt(bigOrZero(tx.GasPrice))
		tx.writeCommon(&w)
		if signed {
			tx.writeSignature(&w)
		} else if chainID := bigOrZero(tx.ChainID); chainID.Sign() > 0 {
			w.WriteBigInt(chainID)
			w.WriteUint64(0)
			w.WriteUint64(0)
		}
	case AccessListTxType:
		w.WriteBigInt(bigOrZero(tx.ChainID))
		w.WriteUint64(tx.Nonce)
		w.WriteBigInt(bigOrZero(tx.GasPrice))
		tx.writeCommon(&w)
		tx.writeAccessList(&w)
		if signed {
			tx.writeSignature(&w)
		}
	case DynamicFeeTxType:
		w.WriteBigInt(bigOrZero(tx.ChainID))
		w.WriteUint64(tx.Nonce)
		w.WriteBigInt(bigOrZero(tx.GasTipCap))
		w.WriteBigInt(bigOrZero(tx.GasFeeCap))
		tx.writeCommon(&w)
		tx.writeAccessList(&w)
		if signed {
			tx.writeSignature(&w)
		}
	}
	w.ListEnd(list)

	out := w.ToBytes()
	if tx.Type == LegacyTxType {
		return out
	}
	return append([]byte{byte(tx.Type)}, out...)
}

// writeCommon writes gas, to, value and data, shared by every envelope.
func (tx *Transaction) writeCommon(w *rlp.EncoderBuffer) {
	w.WriteUint64(tx.Gas)
	if tx.To == nil {
		w.WriteBytes(nil)
	} else {
		w.WriteBytes(tx.To.Bytes())
	}
	w.WriteBigInt(bigOrZero(tx.Value))
	w.WriteBytes(tx.Data)
}

func (tx *Transaction) writeAccessList(w *rlp.EncoderBuffer) {
	// Encoding a well formed access list can't fail.
	raw, _ := EncodeAccessList(tx.AccessList)
	w.Write(raw)
}

func (tx *Transaction) writeSignature(w *rlp.EncoderBuffer) {
	w.WriteBigInt(bigOrZero(tx.V))
	w.WriteBigInt(bigOrZero(tx.R))
	w.WriteBigInt(bigOrZero(tx.S))
}

func decodeLegacy(raw []byte) (*Transaction, error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, err
	}
	if len(items) != 6 && len(items) != 9 {
		return nil, ErrInvalidFieldCount
	}

	tx := &Transaction{Type: LegacyTxType}
	if tx.Nonce, err = items[0].uint64(); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = items[1].bigInt(); err != nil {
		return nil, err
	}
	if err := tx.readCommon(items[2:6]); err != nil {
		return nil, err
	}
	if len(items) == 6 {
		tx.ChainID = new(big.Int)
		return tx, nil
	}

	v, err := items[6].bigInt()
	if err != nil {
		return nil, err
	}
	r, err := items[7].bigInt()
	if err != nil {
		return nil, err
	}
	s, err := items[8].bigInt()
	if err != nil {
		return nil, err
	}

	// EIP-155 unsigned payload: [.., chain_id, 0, 0].
	if r.Sign() == 0 && s.Sign() == 0 {
		tx.ChainID = v
		return tx, nil
	}

	tx.V, tx.R, tx.S = v, r, s
	tx.ChainID = new(big.Int)
	if v.Cmp(big.NewInt(35)) >= 0 {
		chainID := new(big.Int).Sub(v, big.NewInt(35))
		tx.ChainID = chainID.Rsh(chainID, 1)
	}
	return tx, nil
}

func decodeAccessListTx(raw []byte) (*Transaction, error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, err
	}
	if len(items) != 8 && len(items) != 11 {
		return nil, ErrInvalidFieldCount
	}

	tx := &Transaction{Type: AccessListTxType}
	if tx.ChainID, err = items[0].bigInt(); err != nil {
		return nil, err
	}
	if tx.Nonce, err = items[1].uint64(); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = items[2].bigInt(); err != nil {
		return nil, err
	}
	if err := tx.readCommon(items[3:7]); err != nil {
		return nil, err
	}
	if err := tx.readAccessList(items[7]); err != nil {
		return nil, err
	}
	if len(items) == 11 {
		if err := tx.readSignature(items[8:]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func decodeDynamicFeeTx(raw []byte) (*Transaction, error) {
	items, err := splitList(raw)
	if err != nil {
		return nil, err
	}
	if len(items) != 9 && len(items) != 12 {
		return nil, ErrInvalidFieldCount
	}

	tx := &Transaction{Type: DynamicFeeTxType}
	if tx.ChainID, err = items[0].bigInt(); err != nil {
		return nil, err
	}
	if tx.Nonce, err = items[1].uint64(); err != nil {
		return nil, err
	}
	if tx.GasTipCap, err = items[2].bigInt(); err != nil {
		return nil, err
	}
	if tx.GasFeeCap, err = items[3].bigInt(); err != nil {
		return nil, err
	}
	if err := tx.readCommon(items[4:8]); err != nil {
		return nil, err
	}
	if err := tx.readAccessList(items[8]); err != nil {
		return nil, err
	}
	if len(items) == 12 {
		if err := tx.readSignature(items[9:]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func (tx *Transaction) readCommon(items []rawItem) (err error) {
	if tx.Gas, err = items[0].uint64(); err != nil {
		return
	}
	to, err := items[1].bytes()
	if err != nil {
		return
	}
	switch len(to) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(to)
		tx.To = &addr
	default:
		return ErrInvalidAddressLength
	}
	if tx.Value, err = items[2].bigInt(); err != nil {
		return
	}
	tx.Data, err = items[3].bytes()
	return
}

func (tx *Transaction) readAccessList(item rawItem) error {
	if item.kind != rlp.List {
		return ErrExpectedList
	}
	al, err := DecodeAccessList(item.raw)
	if err != nil {
		return err
	}
	tx.AccessList = al
	return nil
}

func (tx *Transaction) readSignature(items []rawItem) (err error) {
	if tx.V, err = items[0].bigInt(); err != nil {
		return
	}
	if tx.R, err = items[1].bigInt(); err != nil {
		return
	}
	tx.S, err = items[2].bigInt()
	return
}
