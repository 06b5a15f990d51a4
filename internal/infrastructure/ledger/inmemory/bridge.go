package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const (
	// DefaultBridgeFee is the fee, in satoshis, of a wrapped token transfer.
	DefaultBridgeFee = uint64(10)
	// DefaultMinRetrieveAmount ...
	DefaultMinRetrieveAmount = uint64(10_000)
)

// BridgeMinter is the principal owning the simulated deposit addresses.
var BridgeMinter = icp.Principal{0, 0, 0, 0, 2, 0, 0, 0x6f, 1, 1}

// retrievalSteps is the sequence of statuses a withdrawal goes through.
var retrievalSteps = []ports.RetrieveStatus{
	ports.RetrieveStatusPending,
	ports.RetrieveStatusSigning,
	ports.RetrieveStatusSending,
	ports.RetrieveStatusSubmitted,
	ports.RetrieveStatusConfirmed,
}

// BridgeConfig ...
type BridgeConfig struct {
	Networks          []btc.Network
	Fee               uint64
	MinRetrieveAmount uint64
	// Bitcoin is queried for the deposits made to the minter addresses.
	Bitcoin ports.BitcoinService
}

type retrieval struct {
	address string
	amount  uint64
	step    int
}

type bridgeLedger struct {
	balances   map[string]uint64
	nextBlock  uint64
	minted     map[string]struct{}
	retrievals map[uint64]*retrieval
}

// Bridge simulates the wrapped bitcoin minter and its ledger, one per
// network.
type Bridge struct {
	lock sync.Mutex

	fee         uint64
	minRetrieve uint64
	bitcoin     ports.BitcoinService
	ledgers     map[btc.Network]*bridgeLedger
}

// NewBridge ...
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Bitcoin == nil {
		return nil, ErrMissingBitcoinService
	}
	fee := cfg.Fee
	if fee == 0 {
		fee = DefaultBridgeFee
	}
	minRetrieve := cfg.MinRetrieveAmount
	if minRetrieve == 0 {
		minRetrieve = DefaultMinRetrieveAmount
	}

	ledgers := make(map[btc.Network]*bridgeLedger, len(cfg.Networks))
	for _, network := range cfg.Networks {
		ledgers[network] = &bridgeLedger{
			balances:   make(map[string]uint64),
			minted:     make(map[string]struct{}),
			retrievals: make(map[uint64]*retrieval),
		}
	}
	return &Bridge{
		fee:         fee,
		minRetrieve: minRetrieve,
		bitcoin:     cfg.Bitcoin,
		ledgers:     ledgers,
	}, nil
}

// Mint credits wrapped tokens to the ICRC-1 account of owner and subaccount.
func (b *Bridge) Mint(
	network btc.Network, owner icp.Principal, subaccount [32]byte, amount uint64,
) (uint64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return 0, err
	}
	l.balances[icp.ICRC1Account(owner, subaccount)] += amount
	return l.addBlock(), nil
}

func (b *Bridge) Balance(
	_ context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) (uint64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return 0, err
	}
	return l.balances[icp.ICRC1Account(owner, subaccount)], nil
}

func (b *Bridge) Transfer(
	_ context.Context, network btc.Network, args ports.TransferArgs,
) (uint64, error) {
	if args.To == "" {
		return 0, ErrInvalidDestination
	}
	if args.Amount == 0 {
		return 0, ErrInvalidAmount
	}
	from := icp.ICRC1Account(args.From, args.Subaccount)

	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return 0, err
	}
	if err := l.debit(from, args.Amount+b.fee); err != nil {
		return 0, err
	}
	l.balances[args.To] += args.Amount
	return l.addBlock(), nil
}

// GetBtcAddress returns a P2WPKH address derived from the minter principal
// and the account.
func (b *Bridge) GetBtcAddress(
	_ context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) (string, error) {
	b.lock.Lock()
	_, err := b.ledger(network)
	b.lock.Unlock()
	if err != nil {
		return "", err
	}
	return depositAddress(network, owner, subaccount)
}

// UpdateBalance mints wrapped tokens for the confirmed deposits of the
// account not minted yet, and returns them.
func (b *Bridge) UpdateBalance(
	ctx context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) ([]ports.MintedUtxo, error) {
	address, err := b.GetBtcAddress(ctx, network, owner, subaccount)
	if err != nil {
		return nil, err
	}
	utxos, err := b.bitcoin.GetUtxos(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deposits: %w", err)
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return nil, err
	}
	account := icp.ICRC1Account(owner, subaccount)

	minted := make([]ports.MintedUtxo, 0)
	for _, u := range utxos {
		if u.Height == 0 {
			continue
		}
		key := fmt.Sprintf("%s:%d", u.TxID, u.Vout)
		if _, ok := l.minted[key]; ok {
			continue
		}
		l.minted[key] = struct{}{}
		l.balances[account] += u.Value
		minted = append(minted, ports.MintedUtxo{
			TxID:       u.TxID,
			Vout:       u.Vout,
			Amount:     u.Value,
			BlockIndex: l.addBlock(),
		})
	}

	if len(minted) > 0 {
		log.WithFields(log.Fields{
			"account": account,
			"network": network.String(),
			"utxos":   len(minted),
		}).Debug("bridge minted deposits")
	}
	return minted, nil
}

// RetrieveBtc burns the wrapped tokens and registers a withdrawal to
// args.To. Each status query advances the withdrawal one step until it is
// confirmed.
func (b *Bridge) RetrieveBtc(
	_ context.Context, network btc.Network, args ports.TransferArgs,
) (uint64, error) {
	if err := btc.ValidateAddress(args.To, network); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDestination, err)
	}
	if args.Amount < b.minRetrieve {
		return 0, ErrAmountTooLow
	}
	from := icp.ICRC1Account(args.From, args.Subaccount)

	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return 0, err
	}
	if err := l.debit(from, args.Amount); err != nil {
		return 0, err
	}
	index := l.addBlock()
	l.retrievals[index] = &retrieval{address: args.To, amount: args.Amount}
	return index, nil
}

func (b *Bridge) RetrieveBtcStatus(
	_ context.Context, network btc.Network, blockIndex uint64,
) (ports.RetrieveStatus, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	l, err := b.ledger(network)
	if err != nil {
		return "", err
	}
	r, ok := l.retrievals[blockIndex]
	if !ok {
		return ports.RetrieveStatusUnknown, nil
	}
	status := retrievalSteps[r.step]
	if r.step < len(retrievalSteps)-1 {
		r.step++
	}
	return status, nil
}

func (b *Bridge) ledger(network btc.Network) (*bridgeLedger, error) {
	l, ok := b.ledgers[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotSupported, network)
	}
	return l, nil
}

func (l *bridgeLedger) debit(account string, amount uint64) error {
	if l.balances[account] < amount {
		return fmt.Errorf(
			"%w: balance %d, required %d",
			ErrInsufficientFunds, l.balances[account], amount,
		)
	}
	l.balances[account] -= amount
	return nil
}

func (l *bridgeLedger) addBlock() uint64 {
	index := l.nextBlock
	l.nextBlock++
	return index
}

func depositAddress(
	network btc.Network, owner icp.Principal, subaccount [32]byte,
) (string, error) {
	account := icp.ICRC1Account(owner, subaccount)
	program := btcutil.Hash160(append(append([]byte{}, BridgeMinter...), account...))
	addr, err := btcutil.NewAddressWitnessPubKeyHash(program, network.Params())
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}
