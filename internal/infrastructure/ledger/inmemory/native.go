// Package inmemoryledger simulates the native token ledger, the cycles
// minting canister and the wrapped bitcoin minter. It backs the regtest
// setup of the daemon and the tests of the services using them.
package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const (
	// DefaultTransferFee is the fee, in e8s, of every native ledger transfer.
	DefaultTransferFee = uint64(10_000)
	// DefaultCyclesPerE8s is the conversion rate applied to top ups.
	DefaultCyclesPerE8s = uint64(10_000)

	topUpMemo = uint64(0x50555054)
)

// CyclesMintingCanister is the principal of the cycles minting canister,
// rkp4c-7iaaa-aaaaa-aaaca-cai.
var CyclesMintingCanister = icp.Principal{0, 0, 0, 0, 0, 0, 0, 4, 1, 1}

type block struct {
	from   string
	to     string
	amount uint64
	memo   uint64
}

// NativeLedger is an in memory native token ledger. Every transfer and mint
// is recorded in a block whose index is returned to the caller.
type NativeLedger struct {
	lock sync.Mutex

	fee            uint64
	cyclesPerE8s   uint64
	balances       map[string]uint64
	blocks         []block
	notified       map[uint64]uint64
	canisterCycles map[string]uint64
}

// NewNativeLedger returns an empty ledger. Zero values for fee and
// cyclesPerE8s select the defaults.
func NewNativeLedger(fee, cyclesPerE8s uint64) *NativeLedger {
	if fee == 0 {
		fee = DefaultTransferFee
	}
	if cyclesPerE8s == 0 {
		cyclesPerE8s = DefaultCyclesPerE8s
	}
	return &NativeLedger{
		fee:            fee,
		cyclesPerE8s:   cyclesPerE8s,
		balances:       make(map[string]uint64),
		notified:       make(map[uint64]uint64),
		canisterCycles: make(map[string]uint64),
	}
}

// Mint credits amount to the account and returns the index of the block
// recording it.
func (l *NativeLedger) Mint(accountID string, amount uint64) (uint64, error) {
	if _, err := icp.ParseAccountIdentifier(accountID); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.balances[accountID] += amount
	return l.addBlock(block{to: accountID, amount: amount}), nil
}

func (l *NativeLedger) AccountBalance(
	_ context.Context, accountID string,
) (uint64, error) {
	if _, err := icp.ParseAccountIdentifier(accountID); err != nil {
		return 0, err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	return l.balances[accountID], nil
}

func (l *NativeLedger) Transfer(
	_ context.Context, args ports.TransferArgs,
) (uint64, error) {
	if _, err := icp.ParseAccountIdentifier(args.To); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDestination, err)
	}
	if args.Amount == 0 {
		return 0, ErrInvalidAmount
	}
	from := icp.NewAccountIdentifier(args.From, args.Subaccount).String()

	l.lock.Lock()
	defer l.lock.Unlock()

	total := args.Amount + l.fee
	if total < args.Amount || l.balances[from] < total {
		return 0, fmt.Errorf(
			"%w: balance %d, required %d",
			ErrInsufficientFunds, l.balances[from], total,
		)
	}

	l.balances[from] -= total
	l.balances[args.To] += args.Amount
	index := l.addBlock(block{
		from: from, to: args.To, amount: args.Amount, memo: args.Memo,
	})

	log.WithFields(log.Fields{
		"from":        from,
		"to":          args.To,
		"amount":      args.Amount,
		"block_index": index,
	}).Debug("native ledger transfer")
	return index, nil
}

func (l *NativeLedger) TransferFee(context.Context) (uint64, error) {
	return l.fee, nil
}

func (l *NativeLedger) CyclesMintingAccount(
	_ context.Context, canisterID string,
) (string, error) {
	return cyclesMintingAccount(canisterID)
}

// NotifyTopUp converts the tokens of a top up block into cycles credited to
// the canister. Notifying the same block again returns the same amount.
func (l *NativeLedger) NotifyTopUp(
	_ context.Context, blockIndex uint64, canisterID string,
) (uint64, error) {
	destination, err := cyclesMintingAccount(canisterID)
	if err != nil {
		return 0, err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if cycles, ok := l.notified[blockIndex]; ok {
		return cycles, nil
	}
	if blockIndex >= uint64(len(l.blocks)) {
		return 0, ErrBlockNotFound
	}
	b := l.blocks[blockIndex]
	if b.to != destination || b.memo != topUpMemo {
		return 0, ErrInvalidTopUp
	}

	cycles := b.amount * l.cyclesPerE8s
	l.notified[blockIndex] = cycles
	l.canisterCycles[canisterID] += cycles
	return cycles, nil
}

// CanisterCycles returns the cycles minted so far for the canister.
func (l *NativeLedger) CanisterCycles(canisterID string) uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.canisterCycles[canisterID]
}

func (l *NativeLedger) addBlock(b block) uint64 {
	l.blocks = append(l.blocks, b)
	return uint64(len(l.blocks) - 1)
}

// cyclesMintingAccount is the account of the minting canister whose
// subaccount is the length prefixed canister principal.
func cyclesMintingAccount(canisterID string) (string, error) {
	canister, err := icp.ParsePrincipal(canisterID)
	if err != nil {
		return "", fmt.Errorf("invalid canister id: %w", err)
	}
	var sub [32]byte
	sub[0] = byte(len(canister))
	copy(sub[1:], canister)
	return icp.NewAccountIdentifier(CyclesMintingCanister, sub).String(), nil
}
