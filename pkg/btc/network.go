package btc

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Network is the bitcoin network a chain adapter is bound to.
type Network int

const (
	Mainnet Network = iota
	Testnet
	Regtest
)

var networkNames = map[Network]string{
	Mainnet: "mainnet",
	Testnet: "testnet",
	Regtest: "regtest",
}

func (n Network) String() string {
	if name, ok := networkNames[n]; ok {
		return name
	}
	return "unknown"
}

// Params returns the chaincfg parameters of the network.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case Testnet:
		return &chaincfg.TestNet3Params
	case Regtest:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// ParseNetwork is the inverse of Network.String.
func ParseNetwork(s string) (Network, error) {
	for n, name := range networkNames {
		if strings.EqualFold(name, s) {
			return n, nil
		}
	}
	return 0, ErrUnknownNetwork
}

// AddressFromPublicKey returns the P2PKH address of the given compressed
// public key on the network.
func AddressFromPublicKey(publicKey []byte, network Network) (string, error) {
	if len(publicKey) != 33 {
		return "", ErrInvalidPublicKey
	}
	if _, err := btcec.ParsePubKey(publicKey); err != nil {
		return "", ErrInvalidPublicKey
	}
	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(publicKey), network.Params(),
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// ValidateAddress checks that addr is a valid address for the network.
func ValidateAddress(addr string, network Network) error {
	_, err := decodeAddress(addr, network)
	return err
}

// decodeAddress fails with ErrAddressNetworkMismatch if addr is only valid
// for another network. Base58 addresses of another network are reported as
// of unknown type by btcutil, hence the retry with the others' params.
func decodeAddress(addr string, network Network) (btcutil.Address, error) {
	params := network.Params()
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		for other := range networkNames {
			if other == network {
				continue
			}
			if _, otherErr := btcutil.DecodeAddress(
				addr, other.Params(),
			); otherErr == nil {
				return nil, ErrAddressNetworkMismatch
			}
		}
		return nil, err
	}
	if !decoded.IsForNet(params) {
		return nil, ErrAddressNetworkMismatch
	}
	return decoded, nil
}
