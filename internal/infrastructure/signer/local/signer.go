// Package localsigner implements the threshold signer port with keys
// deterministically derived from a local seed. It is meant for development
// and regtest setups where no remote signer is reachable.
package localsigner

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

var (
	// ErrSeedTooShort ...
	ErrSeedTooShort = errors.New("signer seed must be at least 16 bytes long")
	// ErrSeedTooLong ...
	ErrSeedTooLong = errors.New("signer seed must be at most 64 bytes long")
	// ErrMissingKeyID ...
	ErrMissingKeyID = errors.New("missing key id")
	// ErrInvalidMessageHash ...
	ErrInvalidMessageHash = errors.New("message hash must be 32 bytes long")
)

type signer struct {
	master *hdkeychain.ExtendedKey

	lock        sync.Mutex
	keys        map[string]*ecdsa.PrivateKey
	cyclesSpent uint64
}

// Signer is the local signer. CyclesSpent reports the fee budget the
// requests made so far would have consumed on a remote signer.
type Signer interface {
	ports.Signer
	CyclesSpent() uint64
}

// NewSigner returns a Signer whose keys are all derived from the BIP32
// master key of seed.
func NewSigner(seed []byte) (Signer, error) {
	if len(seed) < hdkeychain.MinSeedBytes {
		return nil, ErrSeedTooShort
	}
	if len(seed) > hdkeychain.MaxSeedBytes {
		return nil, ErrSeedTooLong
	}
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	return &signer{
		master: master,
		keys:   make(map[string]*ecdsa.PrivateKey),
	}, nil
}

func (s *signer) PublicKey(
	_ context.Context, key ports.SignerKey,
) ([]byte, error) {
	priv, err := s.privateKey(key)
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(&priv.PublicKey), nil
}

func (s *signer) Sign(
	_ context.Context, key ports.SignerKey, messageHash []byte,
) ([]byte, error) {
	if len(messageHash) != 32 {
		return nil, ErrInvalidMessageHash
	}
	priv, err := s.privateKey(key)
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(messageHash, priv)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	s.cyclesSpent += key.Cycles
	s.lock.Unlock()

	log.WithField("key_id", key.KeyID).Debug("signed message hash")
	// Drop the recovery id, callers expect a compact r||s signature.
	return sig[:64], nil
}

func (s *signer) CyclesSpent() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cyclesSpent
}

// privateKey walks the hardened path m/H(key_id)'/H(p0)'/H(p1)'/... from
// the master key, where H maps every component to a 31 bits index.
func (s *signer) privateKey(key ports.SignerKey) (*ecdsa.PrivateKey, error) {
	if key.KeyID == "" {
		return nil, ErrMissingKeyID
	}

	id := keyName(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if priv, ok := s.keys[id]; ok {
		return priv, nil
	}

	extKey := s.master
	for _, component := range derivationComponents(key) {
		child, err := deriveHardened(extKey, ChildIndex(component))
		if err != nil {
			return nil, err
		}
		extKey = child
	}

	ecPriv, err := extKey.ECPrivKey()
	if err != nil {
		return nil, err
	}
	priv := ecPriv.ToECDSA()
	s.keys[id] = priv
	return priv, nil
}

// ChildIndex returns the hardened child index a path component maps to.
func ChildIndex(component []byte) uint32 {
	digest := sha256.Sum256(component)
	index := binary.BigEndian.Uint32(digest[:4]) & (hdkeychain.HardenedKeyStart - 1)
	return hdkeychain.HardenedKeyStart + index
}

// deriveHardened moves on to the next hardened index whenever the child at
// i is invalid, as BIP32 prescribes.
func deriveHardened(
	parent *hdkeychain.ExtendedKey, i uint32,
) (*hdkeychain.ExtendedKey, error) {
	for {
		child, err := parent.Derive(i)
		if err == nil {
			return child, nil
		}
		if !errors.Is(err, hdkeychain.ErrInvalidChild) {
			return nil, err
		}
		i++
		if i < hdkeychain.HardenedKeyStart {
			i = hdkeychain.HardenedKeyStart
		}
	}
}

func derivationComponents(key ports.SignerKey) [][]byte {
	components := make([][]byte, 0, len(key.DerivationPath)+1)
	components = append(components, []byte(key.KeyID))
	return append(components, key.DerivationPath...)
}

// keyName length-prefixes every component so that distinct paths never
// collide in the cache.
func keyName(key ports.SignerKey) string {
	buf := make([]byte, 0, 64)
	for _, c := range derivationComponents(key) {
		buf = appendWithLen(buf, c)
	}
	return string(buf)
}

func appendWithLen(buf, b []byte) []byte {
	n := len(b)
	buf = append(buf, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	return append(buf, b...)
}
