package btc

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// DustThreshold is the minimum value in sats of any output.
	DustThreshold = 1000
	// MaxFeeIterations bounds the fee fixed-point loop.
	MaxFeeIterations = 16
)

// mockSignature is a worst case DER signature plus sighash flag, used to
// estimate the size of a signed input.
var mockSignature = func() []byte {
	sig := []byte{0x30, 0x46, 0x02, 0x21, 0x00}
	sig = append(sig, bytes.Repeat([]byte{0xff}, 32)...)
	sig = append(sig, 0x02, 0x21, 0x00)
	sig = append(sig, bytes.Repeat([]byte{0xff}, 32)...)
	return append(sig, byte(txscript.SigHashAll))
}()

// Utxo is an unspent output owned by the account.
type Utxo struct {
	TxID   string
	Vout   uint32
	Value  uint64
	Height uint32
}

// TxStatus is the inclusion status of a transaction. BlockHeight is zero
// while the transaction is in the mempool.
type TxStatus struct {
	Confirmed   bool
	BlockHeight uint32
}

// IsFinal returns whether the transaction is included in a block.
func (s TxStatus) IsFinal() bool {
	return s.Confirmed && s.BlockHeight > 0
}

// BuildArgs are the inputs of BuildTransaction.
type BuildArgs struct {
	PublicKey   []byte
	Network     Network
	Utxos       []Utxo
	Destination string
	Amount      uint64
	// FeeRate is expressed in millisatoshi per byte.
	FeeRate uint64
}

// Transaction is an unsigned bitcoin transaction together with the selected
// coins and the fee it pays.
type Transaction struct {
	Tx     *wire.MsgTx
	Inputs []Utxo
	Fee    uint64
	Change uint64

	prevScript []byte
}

// BuildTransaction selects coins and builds a P2PKH transaction sending
// Amount to Destination. The fee is found by repeatedly building and mock
// signing the transaction until size * FeeRate / 1000 stops changing.
func BuildTransaction(args BuildArgs) (*Transaction, error) {
	if args.Amount < DustThreshold {
		return nil, ErrDustOutput
	}
	if args.Amount > btcutil.MaxSatoshi {
		return nil, ErrAmountTooLarge
	}
	destinationScript, err := addressScript(args.Destination, args.Network)
	if err != nil {
		return nil, err
	}
	// Change goes back to the P2PKH address of the signing key, which is
	// also the owner of every spent output.
	ownAddress, err := AddressFromPublicKey(args.PublicKey, args.Network)
	if err != nil {
		return nil, err
	}
	changeScript, err := addressScript(ownAddress, args.Network)
	if err != nil {
		return nil, err
	}

	fee := uint64(0)
	for i := 0; i < MaxFeeIterations; i++ {
		tx, err := buildWithFee(
			args.Utxos, destinationScript, changeScript, args.Amount, fee,
		)
		if err != nil {
			return nil, err
		}

		size, err := mockSignedSize(tx.Tx, args.PublicKey)
		if err != nil {
			return nil, err
		}
		newFee := uint64(size) * args.FeeRate / 1000
		if newFee > args.Amount {
			return nil, ErrFeeExceedsAmount
		}
		if newFee == fee {
			tx.prevScript = changeScript
			return tx, nil
		}
		fee = newFee
	}
	return nil, ErrFeeNotConverged
}

func buildWithFee(
	utxos []Utxo, destinationScript, changeScript []byte, amount, fee uint64,
) (*Transaction, error) {
	target := amount + fee

	selected := make([]Utxo, 0)
	accumulated := uint64(0)
	for i := len(utxos) - 1; i >= 0; i-- {
		if accumulated >= target {
			break
		}
		selected = append(selected, utxos[i])
		accumulated += utxos[i].Value
	}
	if accumulated < target {
		return nil, &InsufficientBalanceError{
			Available: accumulated,
			Required:  target,
		}
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range selected {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, err
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
	}

	tx.AddTxOut(wire.NewTxOut(int64(amount), destinationScript))
	remainder := accumulated - target
	if remainder >= DustThreshold {
		tx.AddTxOut(wire.NewTxOut(int64(remainder), changeScript))
	} else {
		remainder = 0
	}

	return &Transaction{
		Tx:     tx,
		Inputs: selected,
		Fee:    fee,
		Change: remainder,
	}, nil
}

func addressScript(addr string, network Network) ([]byte, error) {
	decoded, err := decodeAddress(addr, network)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(decoded)
}

func mockSignedSize(tx *wire.MsgTx, publicKey []byte) (int, error) {
	mock := tx.Copy()
	for _, in := range mock.TxIn {
		script, err := txscript.NewScriptBuilder().
			AddData(mockSignature).
			AddData(publicKey).
			Script()
		if err != nil {
			return 0, err
		}
		in.SignatureScript = script
	}
	return mock.SerializeSize(), nil
}

// SignatureHashes returns, for every input, the legacy SIGHASH_ALL digest
// that must be signed with the key the transaction was built for.
func (t *Transaction) SignatureHashes() ([][]byte, error) {
	hashes := make([][]byte, 0, len(t.Tx.TxIn))
	for i := range t.Tx.TxIn {
		hash, err := txscript.CalcSignatureHash(
			t.prevScript, txscript.SigHashAll, t.Tx, i,
		)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// ApplySignatures fills the input scripts with the given 64-byte compact
// signatures, one per input in order.
func (t *Transaction) ApplySignatures(signatures [][]byte, publicKey []byte) error {
	if len(signatures) != len(t.Tx.TxIn) {
		return ErrSignatureCountMismatch
	}
	for i, sig := range signatures {
		der, err := toDER(sig)
		if err != nil {
			return err
		}
		script, err := txscript.NewScriptBuilder().
			AddData(append(der, byte(txscript.SigHashAll))).
			AddData(publicKey).
			Script()
		if err != nil {
			return err
		}
		t.Tx.TxIn[i].SignatureScript = script
	}
	return nil
}

// TxID returns the hash of the transaction in display order.
func (t *Transaction) TxID() string {
	return t.Tx.TxHash().String()
}

// Serialize returns the hex encoded raw transaction.
func (t *Transaction) Serialize() (string, error) {
	buf := bytes.NewBuffer(make([]byte, 0, t.Tx.SerializeSize()))
	if err := t.Tx.Serialize(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// toDER converts a compact r||s signature into its canonical low-S DER form.
func toDER(sig []byte) ([]byte, error) {
	if len(sig) != 64 {
		return nil, ErrInvalidSignatureLength
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return nil, ErrInvalidSignature
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return nil, ErrInvalidSignature
	}
	return ecdsa.NewSignature(&r, &s).Serialize(), nil
}
