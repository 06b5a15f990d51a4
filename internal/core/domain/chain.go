package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

// ChainKind is the family of a chain.
type ChainKind int

const (
	ChainNativeLedger ChainKind = iota
	ChainBitcoin
	ChainEvm
	ChainBridge
)

var chainKindPrefixes = map[ChainKind]string{
	ChainNativeLedger: "icp",
	ChainBitcoin:      "btc",
	ChainEvm:          "evm",
	ChainBridge:       "ckbtc",
}

func (k ChainKind) String() string {
	if p, ok := chainKindPrefixes[k]; ok {
		return p
	}
	return "unknown"
}

// ChainID identifies a chain within a ledger: a family plus, for multi
// network families, the bitcoin network or the EVM chain id.
type ChainID struct {
	Kind       ChainKind
	Network    btc.Network
	EvmChainID uint64
}

// NativeLedgerChain ...
func NativeLedgerChain() ChainID {
	return ChainID{Kind: ChainNativeLedger}
}

// BitcoinChain ...
func BitcoinChain(network btc.Network) ChainID {
	return ChainID{Kind: ChainBitcoin, Network: network}
}

// EvmChain ...
func EvmChain(chainID uint64) ChainID {
	return ChainID{Kind: ChainEvm, EvmChainID: chainID}
}

// BridgeChain ...
func BridgeChain(network btc.Network) ChainID {
	return ChainID{Kind: ChainBridge, Network: network}
}

// String returns the key of the chain, ie. icp, btc:mainnet, evm:1,
// ckbtc:testnet.
func (c ChainID) String() string {
	switch c.Kind {
	case ChainNativeLedger:
		return c.Kind.String()
	case ChainEvm:
		return fmt.Sprintf("%s:%d", c.Kind, c.EvmChainID)
	default:
		return fmt.Sprintf("%s:%s", c.Kind, c.Network)
	}
}

// ParseChainID is the inverse of ChainID.String.
func ParseChainID(s string) (ChainID, error) {
	prefix, suffix, hasSuffix := strings.Cut(strings.ToLower(s), ":")
	switch prefix {
	case "icp":
		if hasSuffix {
			return ChainID{}, ErrUnknownChain
		}
		return NativeLedgerChain(), nil
	case "btc", "ckbtc":
		network, err := btc.ParseNetwork(suffix)
		if err != nil {
			return ChainID{}, ErrUnknownChain
		}
		if prefix == "btc" {
			return BitcoinChain(network), nil
		}
		return BridgeChain(network), nil
	case "evm":
		chainID, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			return ChainID{}, ErrUnknownChain
		}
		return EvmChain(chainID), nil
	default:
		return ChainID{}, ErrUnknownChain
	}
}

// Symbol returns the ticker of the chain's native asset.
func (c ChainID) Symbol() string {
	switch c.Kind {
	case ChainNativeLedger:
		return "ICP"
	case ChainBitcoin:
		return "BTC"
	case ChainEvm:
		return "ETH"
	default:
		return "ckBTC"
	}
}

// Decimals returns the precision of the chain's native asset.
func (c ChainID) Decimals() int32 {
	if c.Kind == ChainEvm {
		return 18
	}
	return 8
}

// Chain is an address of the ledger on a given chain, together with the
// transfers submitted from it and not yet confirmed.
type Chain struct {
	ID      ChainID
	Address string
	Pending []PendingTransfer
}

// NewChain ...
func NewChain(id ChainID, address string) *Chain {
	return &Chain{
		ID:      id,
		Address: address,
		Pending: make([]PendingTransfer, 0),
	}
}

// AddPending appends p to the list of pending transfers.
func (c *Chain) AddPending(p PendingTransfer) error {
	if !p.matches(c.ID.Kind) {
		return ErrInvalidPending
	}
	for _, pp := range c.Pending {
		if pp.ID == p.ID {
			return nil
		}
	}
	c.Pending = append(c.Pending, p)
	return nil
}

// RemovePending removes the transfer with the given id. It fails if no such
// entry exists.
func (c *Chain) RemovePending(id string) (PendingTransfer, error) {
	for i, p := range c.Pending {
		if p.ID == id {
			c.Pending = append(c.Pending[:i:i], c.Pending[i+1:]...)
			return p, nil
		}
	}
	return PendingTransfer{}, ErrPendingNotFound
}

// SetBridgeStatus records the last status the minter reported for the
// bridge transfer with the given id.
func (c *Chain) SetBridgeStatus(id, status string) error {
	for i, p := range c.Pending {
		if p.ID != id {
			continue
		}
		if p.Bridge == nil {
			return ErrInvalidPending
		}
		c.Pending[i].Bridge.Status = status
		return nil
	}
	return ErrPendingNotFound
}

// GetPending ...
func (c *Chain) GetPending(id string) (PendingTransfer, error) {
	for _, p := range c.Pending {
		if p.ID == id {
			return p, nil
		}
	}
	return PendingTransfer{}, ErrPendingNotFound
}

func (c *Chain) clone() *Chain {
	cpy := *c
	cpy.Pending = make([]PendingTransfer, 0, len(c.Pending))
	for _, p := range c.Pending {
		cpy.Pending = append(cpy.Pending, p.clone())
	}
	return &cpy
}
