package localsigner_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	localsigner "github.com/tdex-network/custody-daemon/internal/infrastructure/signer/local"
)

var (
	ctx  = context.Background()
	seed = []byte("correct horse battery staple")
)

func TestNewSigner(t *testing.T) {
	tests := []struct {
		name        string
		seed        []byte
		expectedErr error
	}{
		{"short seed", []byte("short"), localsigner.ErrSeedTooShort},
		{"long seed", bytes.Repeat([]byte{0x01}, 65), localsigner.ErrSeedTooLong},
		{"min seed", bytes.Repeat([]byte{0x01}, 16), nil},
		{"max seed", bytes.Repeat([]byte{0x01}, 64), nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, err := localsigner.NewSigner(tt.seed)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestPublicKeyFollowsBIP32(t *testing.T) {
	s, err := localsigner.NewSigner(seed)
	require.NoError(t, err)

	key := ports.SignerKey{
		KeyID:          "key_1",
		DerivationPath: [][]byte{{0x01}, []byte("account")},
	}
	pubkey, err := s.PublicKey(ctx, key)
	require.NoError(t, err)

	extKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	for _, c := range append([][]byte{[]byte(key.KeyID)}, key.DerivationPath...) {
		index := localsigner.ChildIndex(c)
		require.GreaterOrEqual(t, index, uint32(hdkeychain.HardenedKeyStart))
		extKey, err = extKey.Derive(index)
		require.NoError(t, err)
	}
	expected, err := extKey.ECPubKey()
	require.NoError(t, err)
	require.Equal(t, expected.SerializeCompressed(), pubkey)
}

func TestPublicKey(t *testing.T) {
	s, err := localsigner.NewSigner(seed)
	require.NoError(t, err)

	key := ports.SignerKey{
		KeyID:          "key_1",
		DerivationPath: [][]byte{{0x01}, {0x00, 0x00}},
	}

	pubkey, err := s.PublicKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, pubkey, 33)

	again, err := s.PublicKey(ctx, key)
	require.NoError(t, err)
	require.Equal(t, pubkey, again)

	// Moving a byte across path components must give another key.
	other, err := s.PublicKey(ctx, ports.SignerKey{
		KeyID:          "key_1",
		DerivationPath: [][]byte{{0x01, 0x00}, {0x00}},
	})
	require.NoError(t, err)
	require.NotEqual(t, pubkey, other)

	otherKeyID, err := s.PublicKey(ctx, ports.SignerKey{
		KeyID:          "test_key_1",
		DerivationPath: key.DerivationPath,
	})
	require.NoError(t, err)
	require.NotEqual(t, pubkey, otherKeyID)

	otherSeed, err := localsigner.NewSigner(append(seed, '!'))
	require.NoError(t, err)
	fromOtherSeed, err := otherSeed.PublicKey(ctx, key)
	require.NoError(t, err)
	require.NotEqual(t, pubkey, fromOtherSeed)

	_, err = s.PublicKey(ctx, ports.SignerKey{})
	require.ErrorIs(t, err, localsigner.ErrMissingKeyID)
}

func TestSign(t *testing.T) {
	s, err := localsigner.NewSigner(seed)
	require.NoError(t, err)

	key := ports.SignerKey{
		KeyID:          "key_1",
		DerivationPath: [][]byte{{0x01}},
		Cycles:         26_153_846_153,
	}
	pubkey, err := s.PublicKey(ctx, key)
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("message"))
	sig, err := s.Sign(ctx, key, hash[:])
	require.NoError(t, err)
	require.Len(t, sig, 64)
	require.True(t, crypto.VerifySignature(pubkey, hash[:], sig))
	require.Equal(t, key.Cycles, s.CyclesSpent())

	_, err = s.Sign(ctx, key, []byte("not a hash"))
	require.ErrorIs(t, err, localsigner.ErrInvalidMessageHash)
	require.Equal(t, key.Cycles, s.CyclesSpent())
}
