package domain

import (
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/evm"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// Ledger holds the key material of an account and the chains it has an
// address on. The native ledger chain is always present, the others are
// added on demand.
type Ledger struct {
	Owner      []byte
	Subaccount Subaccount
	PublicKey  []byte
	Chains     map[string]*Chain
}

// NewLedger returns a ledger for the given subaccount of owner, with its
// native ledger address already in place.
func NewLedger(owner icp.Principal, subaccount Subaccount) *Ledger {
	l := &Ledger{
		Owner:      append([]byte{}, owner...),
		Subaccount: subaccount,
		Chains:     make(map[string]*Chain),
	}
	native := NativeLedgerChain()
	address := icp.NewAccountIdentifier(owner, subaccount).String()
	l.Chains[native.String()] = NewChain(native, address)
	return l
}

// HasPublicKey ...
func (l *Ledger) HasPublicKey() bool {
	return len(l.PublicKey) > 0
}

// SetPublicKey sets the ledger's key, once, and derives the default bitcoin
// mainnet address and the chain agnostic EVM address (chain id 0).
func (l *Ledger) SetPublicKey(publicKey []byte) error {
	if l.HasPublicKey() {
		return ErrPublicKeyAlreadySet
	}
	if len(publicKey) != 33 {
		return ErrInvalidPublicKey
	}
	if _, err := btcec.ParsePubKey(publicKey); err != nil {
		return ErrInvalidPublicKey
	}

	l.PublicKey = append([]byte{}, publicKey...)
	for _, id := range []ChainID{BitcoinChain(btc.Mainnet), EvmChain(0)} {
		if _, ok := l.Chains[id.String()]; ok {
			continue
		}
		address, err := l.AddressOf(id)
		if err != nil {
			l.PublicKey = nil
			return err
		}
		l.Chains[id.String()] = NewChain(id, address)
	}
	return nil
}

// AddressOf derives, without storing it, the address of the ledger on the
// given chain.
func (l *Ledger) AddressOf(id ChainID) (string, error) {
	switch id.Kind {
	case ChainNativeLedger:
		return icp.NewAccountIdentifier(l.Owner, l.Subaccount).String(), nil
	case ChainBridge:
		return icp.ICRC1Account(l.Owner, l.Subaccount), nil
	case ChainBitcoin:
		if !l.HasPublicKey() {
			return "", ErrPublicKeyNotSet
		}
		return btc.AddressFromPublicKey(l.PublicKey, id.Network)
	case ChainEvm:
		if !l.HasPublicKey() {
			return "", ErrPublicKeyNotSet
		}
		addr, err := evm.AddressFromPublicKey(l.PublicKey)
		if err != nil {
			return "", err
		}
		return addr.Hex(), nil
	default:
		return "", ErrUnknownChain
	}
}

// CreateAddress derives the address for the given chain and inserts it.
func (l *Ledger) CreateAddress(id ChainID) (*Chain, error) {
	if _, ok := l.Chains[id.String()]; ok {
		return nil, ErrChainAlreadyExists
	}
	address, err := l.AddressOf(id)
	if err != nil {
		return nil, err
	}
	chain := NewChain(id, address)
	if err := l.InsertChain(chain); err != nil {
		return nil, err
	}
	return chain, nil
}

// GetChain ...
func (l *Ledger) GetChain(id ChainID) (*Chain, error) {
	chain, ok := l.Chains[id.String()]
	if !ok {
		return nil, ErrChainNotFound
	}
	return chain, nil
}

// InsertChain adds chain to the ledger, failing if one with the same id is
// already present.
func (l *Ledger) InsertChain(chain *Chain) error {
	key := chain.ID.String()
	if _, ok := l.Chains[key]; ok {
		return ErrChainAlreadyExists
	}
	l.Chains[key] = chain
	return nil
}

// ListChains returns the chains sorted by id.
func (l *Ledger) ListChains() []*Chain {
	chains := make([]*Chain, 0, len(l.Chains))
	for _, c := range l.Chains {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool {
		return chains[i].ID.String() < chains[j].ID.String()
	})
	return chains
}

// Addresses maps every chain id to the ledger's address on it.
func (l *Ledger) Addresses() map[string]string {
	addresses := make(map[string]string, len(l.Chains))
	for key, c := range l.Chains {
		addresses[key] = c.Address
	}
	return addresses
}

// AddPending tracks p on the given chain.
func (l *Ledger) AddPending(id ChainID, p PendingTransfer) error {
	chain, err := l.GetChain(id)
	if err != nil {
		return err
	}
	return chain.AddPending(p)
}

// RemovePending drops the pending transfer with the given id from the chain.
func (l *Ledger) RemovePending(id ChainID, pendingID string) (PendingTransfer, error) {
	chain, err := l.GetChain(id)
	if err != nil {
		return PendingTransfer{}, err
	}
	return chain.RemovePending(pendingID)
}

// SetBridgeStatus updates the minter status of a pending bridge transfer.
func (l *Ledger) SetBridgeStatus(id ChainID, pendingID, status string) error {
	chain, err := l.GetChain(id)
	if err != nil {
		return err
	}
	return chain.SetBridgeStatus(pendingID, status)
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	cpy := &Ledger{
		Owner:      append([]byte{}, l.Owner...),
		Subaccount: l.Subaccount,
		Chains:     make(map[string]*Chain, len(l.Chains)),
	}
	if l.HasPublicKey() {
		cpy.PublicKey = append([]byte{}, l.PublicKey...)
	}
	for key, c := range l.Chains {
		cpy.Chains[key] = c.clone()
	}
	return cpy
}
