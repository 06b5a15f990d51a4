package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// PendingKind is the variant of a pending transfer.
type PendingKind int

const (
	PendingBitcoin PendingKind = iota
	PendingNativeLedger
	PendingBridge
	PendingEvm
)

func (k PendingKind) String() string {
	switch k {
	case PendingBitcoin:
		return "bitcoin"
	case PendingNativeLedger:
		return "native_ledger"
	case PendingBridge:
		return "bridge"
	case PendingEvm:
		return "evm"
	default:
		return "unknown"
	}
}

// BitcoinPending is an unconfirmed bitcoin transaction.
type BitcoinPending struct {
	TxID        string
	Destination string
	Amount      uint64
}

// NativeLedgerPending is a native ledger transfer waiting for a follow up
// notification. CanisterID is set for top ups.
type NativeLedgerPending struct {
	BlockIndex uint64
	CanisterID string
}

// BridgePending tracks a swap through the bridge minter. BlockIndex is set
// for retrievals (bridge to BTC), TxID for deposits (BTC to bridge).
type BridgePending struct {
	BlockIndex *uint64
	TxID       string
	Status     string
}

// EvmPending is a relayed EVM transaction.
type EvmPending struct {
	TxHash string
}

// PendingTransfer is a transfer submitted to the network but not yet
// confirmed. Exactly one variant is set, according to Kind.
type PendingTransfer struct {
	ID           string
	Kind         PendingKind
	CreatedAt    int64
	Bitcoin      *BitcoinPending
	NativeLedger *NativeLedgerPending
	Bridge       *BridgePending
	Evm          *EvmPending
}

func newPending(kind PendingKind) PendingTransfer {
	return PendingTransfer{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: time.Now().Unix(),
	}
}

// NewBitcoinPending ...
func NewBitcoinPending(txid, destination string, amount uint64) PendingTransfer {
	p := newPending(PendingBitcoin)
	p.Bitcoin = &BitcoinPending{TxID: txid, Destination: destination, Amount: amount}
	return p
}

// NewNativeLedgerPending ...
func NewNativeLedgerPending(blockIndex uint64, canisterID string) PendingTransfer {
	p := newPending(PendingNativeLedger)
	p.NativeLedger = &NativeLedgerPending{BlockIndex: blockIndex, CanisterID: canisterID}
	return p
}

// NewBridgeRetrievePending tracks a bridge to BTC swap.
func NewBridgeRetrievePending(blockIndex uint64) PendingTransfer {
	p := newPending(PendingBridge)
	p.Bridge = &BridgePending{BlockIndex: &blockIndex}
	return p
}

// NewBridgeDepositPending tracks a BTC to bridge swap.
func NewBridgeDepositPending(txid string) PendingTransfer {
	p := newPending(PendingBridge)
	p.Bridge = &BridgePending{TxID: txid}
	return p
}

// NewEvmPending ...
func NewEvmPending(txHash string) PendingTransfer {
	p := newPending(PendingEvm)
	p.Evm = &EvmPending{TxHash: txHash}
	return p
}

// Reference returns the on-chain reference of the transfer.
func (p PendingTransfer) Reference() string {
	switch p.Kind {
	case PendingBitcoin:
		return p.Bitcoin.TxID
	case PendingNativeLedger:
		return strconv.FormatUint(p.NativeLedger.BlockIndex, 10)
	case PendingBridge:
		if p.Bridge.BlockIndex != nil {
			return strconv.FormatUint(*p.Bridge.BlockIndex, 10)
		}
		return p.Bridge.TxID
	case PendingEvm:
		return p.Evm.TxHash
	default:
		return ""
	}
}

// matches returns whether the variant of p can be tracked by a chain of the
// given kind.
func (p PendingTransfer) matches(kind ChainKind) bool {
	switch p.Kind {
	case PendingBitcoin:
		return kind == ChainBitcoin && p.Bitcoin != nil
	case PendingNativeLedger:
		return kind == ChainNativeLedger && p.NativeLedger != nil
	case PendingBridge:
		return kind == ChainBridge && p.Bridge != nil
	case PendingEvm:
		return kind == ChainEvm && p.Evm != nil
	default:
		return false
	}
}

func (p PendingTransfer) clone() PendingTransfer {
	cpy := p
	if p.Bitcoin != nil {
		v := *p.Bitcoin
		cpy.Bitcoin = &v
	}
	if p.NativeLedger != nil {
		v := *p.NativeLedger
		cpy.NativeLedger = &v
	}
	if p.Bridge != nil {
		v := *p.Bridge
		if p.Bridge.BlockIndex != nil {
			idx := *p.Bridge.BlockIndex
			v.BlockIndex = &idx
		}
		cpy.Bridge = &v
	}
	if p.Evm != nil {
		v := *p.Evm
		cpy.Evm = &v
	}
	return cpy
}
