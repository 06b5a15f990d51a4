package evm_test

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/pkg/evm"
)

func TestIntItems(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		expected string
	}{
		{"zero", big.NewInt(0), "80"},
		{"nil", nil, "80"},
		{"single_byte", big.NewInt(0x7f), "7f"},
		{"short_string", big.NewInt(0x80), "8180"},
		{"two_bytes", big.NewInt(0x0400), "820400"},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded := evm.EncodeInt(tt.value)
			require.Equal(t, tt.expected, hex.EncodeToString(encoded))

			decoded, err := evm.DecodeInt(encoded)
			require.NoError(t, err)
			if tt.value == nil {
				require.Zero(t, decoded.Sign())
				return
			}
			require.Zero(t, tt.value.Cmp(decoded))
		})
	}
}

func TestDecodeIntRejectsLists(t *testing.T) {
	_, err := evm.DecodeInt([]byte{0xc0})
	require.ErrorIs(t, err, evm.ErrExpectedString)

	_, err = evm.DecodeInt([]byte{0x80, 0x80})
	require.ErrorIs(t, err, evm.ErrTrailingBytes)
}

func TestAccessList(t *testing.T) {
	al := types.AccessList{
		{
			Address: common.HexToAddress("0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"),
			StorageKeys: []common.Hash{
				common.HexToHash("0x03"),
				common.HexToHash("0x07"),
			},
		},
		{
			Address: common.HexToAddress("0xbb9bc244d798123fde783fcc1c72d3bb8c189413"),
		},
	}
	expected := "f872" +
		"f859" +
		"94de0b295669a9fd93d5f28d9ec85e40f4cb697bae" +
		"f842" +
		"a00000000000000000000000000000000000000000000000000000000000000003" +
		"a00000000000000000000000000000000000000000000000000000000000000007" +
		"d6" +
		"94bb9bc244d798123fde783fcc1c72d3bb8c189413" +
		"c0"

	encoded, err := evm.EncodeAccessList(al)
	require.NoError(t, err)
	require.Equal(t, expected, hex.EncodeToString(encoded))

	decoded, err := evm.DecodeAccessList(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, al[0], decoded[0])
	require.Equal(t, al[1].Address, decoded[1].Address)
	require.Empty(t, decoded[1].StorageKeys)

	reencoded, err := evm.EncodeAccessList(decoded)
	require.NoError(t, err)
	require.Equal(t, encoded, reencoded)

	empty, err := evm.EncodeAccessList(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0}, empty)
}

func TestDetectTxType(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		expected    evm.TxType
		expectedErr error
	}{
		{"legacy", []byte{0xc1, 0x80}, evm.LegacyTxType, nil},
		{"legacy_long_list", []byte{0xf8, 0x00}, evm.LegacyTxType, nil},
		{"eip2930", []byte{0x01, 0xc0}, evm.AccessListTxType, nil},
		{"eip1559", []byte{0x02, 0xc0}, evm.DynamicFeeTxType, nil},
		{"eip4844", []byte{0x03, 0xc0}, 0, evm.ErrInvalidTransactionType},
		{"string_marker", []byte{0x80}, 0, evm.ErrInvalidTransactionType},
		{"empty", nil, 0, evm.ErrEmptyTransaction},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			txType, err := evm.DetectTxType(tt.raw)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, txType)
		})
	}
}

func TestUnsignedRoundTrip(t *testing.T) {
	for _, tx := range testTransactions() {
		tx := tx

		t.Run(tx.Type.String(), func(t *testing.T) {
			t.Parallel()

			decoded, err := evm.DecodeTransaction(tx.EncodeUnsigned())
			require.NoError(t, err)
			require.False(t, decoded.IsSigned())
			require.Equal(t, tx.EncodeUnsigned(), decoded.EncodeUnsigned())
			require.Equal(t, tx.Nonce, decoded.Nonce)
			require.Equal(t, tx.Gas, decoded.Gas)
			require.Equal(t, *tx.To, *decoded.To)
			require.Equal(t, tx.Data, decoded.Data)
			require.Zero(t, tx.Value.Cmp(decoded.Value))
			require.Zero(t, tx.ChainID.Cmp(decoded.ChainID))
		})
	}
}

func TestLegacyWithoutChainID(t *testing.T) {
	to := common.HexToAddress("0xbb9bc244d798123fde783fcc1c72d3bb8c189413")
	tx := &evm.Transaction{
		Type:     evm.LegacyTxType,
		Nonce:    1,
		GasPrice: big.NewInt(10),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(1),
	}

	decoded, err := evm.DecodeTransaction(tx.EncodeUnsigned())
	require.NoError(t, err)
	require.Zero(t, decoded.ChainID.Sign())
}

func TestSignWithInteroperability(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	publicKey := crypto.CompressPubkey(&key.PublicKey)
	expectedSender := crypto.PubkeyToAddress(key.PublicKey)

	for _, tx := range testTransactions() {
		tx := tx

		t.Run(tx.Type.String(), func(t *testing.T) {
			t.Parallel()

			hash := tx.SigningHash()
			sig, err := crypto.Sign(hash.Bytes(), key)
			require.NoError(t, err)

			signed, err := evm.SignWith(tx, sig[:64], publicKey)
			require.NoError(t, err)
			require.True(t, signed.IsSigned())

			raw, err := signed.EncodeSigned()
			require.NoError(t, err)

			gethTx := new(types.Transaction)
			require.NoError(t, gethTx.UnmarshalBinary(raw))
			signer := types.LatestSignerForChainID(tx.ChainID)
			require.Equal(t, hash, signer.Hash(gethTx))

			sender, err := types.Sender(signer, gethTx)
			require.NoError(t, err)
			require.Equal(t, expectedSender, sender)

			txHash, err := signed.Hash()
			require.NoError(t, err)
			require.Equal(t, gethTx.Hash(), txHash)

			decoded, err := evm.DecodeTransaction(raw)
			require.NoError(t, err)
			require.True(t, decoded.IsSigned())
			require.Zero(t, tx.ChainID.Cmp(decoded.ChainID))
			require.Equal(t, raw, mustEncodeSigned(t, decoded))
		})
	}
}

func TestRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	publicKey := crypto.CompressPubkey(&key.PublicKey)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherPublicKey := crypto.CompressPubkey(&otherKey.PublicKey)

	hash := randomBytes(32)
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)

	id, err := evm.RecoveryID(hash, sig[:64], publicKey, 2)
	require.NoError(t, err)
	require.Equal(t, sig[64], id)

	tests := []struct {
		name        string
		hash        []byte
		sig         []byte
		publicKey   []byte
		expectedErr error
	}{
		{"short_signature", hash, sig[:63], publicKey, evm.ErrInvalidSignatureLength},
		{"short_hash", hash[:31], sig[:64], publicKey, evm.ErrInvalidMessageLength},
		{"uncompressed_key", hash, sig[:64], crypto.FromECDSAPub(&key.PublicKey), evm.ErrInvalidPublicKeyLength},
		{"other_key", hash, sig[:64], otherPublicKey, evm.ErrRecoveryIDNotFound},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := evm.RecoveryID(tt.hash, tt.sig, tt.publicKey, 4)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	addr, err := evm.AddressFromPublicKey(crypto.CompressPubkey(&key.PublicKey))
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)

	_, err = evm.AddressFromPublicKey(randomBytes(20))
	require.ErrorIs(t, err, evm.ErrInvalidPublicKeyLength)
}

func testTransactions() []*evm.Transaction {
	to := common.HexToAddress("0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae")
	al := types.AccessList{
		{
			Address:     to,
			StorageKeys: []common.Hash{common.HexToHash("0x01")},
		},
	}
	return []*evm.Transaction{
		{
			Type:     evm.LegacyTxType,
			ChainID:  big.NewInt(1),
			Nonce:    9,
			GasPrice: big.NewInt(20_000_000_000),
			Gas:      21000,
			To:       &to,
			Value:    big.NewInt(1_000_000_000_000_000_000),
			Data:     []byte{0xca, 0xfe},
		},
		{
			Type:       evm.AccessListTxType,
			ChainID:    big.NewInt(5),
			Nonce:      0,
			GasPrice:   big.NewInt(1_000_000_000),
			Gas:        50000,
			To:         &to,
			Value:      big.NewInt(42),
			Data:       []byte{0x01},
			AccessList: al,
		},
		{
			Type:      evm.DynamicFeeTxType,
			ChainID:   big.NewInt(137),
			Nonce:     300,
			GasTipCap: big.NewInt(2_000_000_000),
			GasFeeCap: big.NewInt(60_000_000_000),
			Gas:       21000,
			To:        &to,
			Value:     big.NewInt(7),
			Data:      []byte{0xbe, 0xef},
		},
	}
}

func mustEncodeSigned(t *testing.T, tx *evm.Transaction) []byte {
	raw, err := tx.EncodeSigned()
	require.NoError(t, err)
	return raw
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	// nolint
	rand.Read(b)
	return b
}
