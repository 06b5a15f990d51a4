package inmemoryledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	inmemoryledger "github.com/tdex-network/custody-daemon/internal/infrastructure/ledger/inmemory"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const (
	testCanister = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	topUpMemo    = uint64(0x50555054)
)

var (
	ctx   = context.Background()
	owner = icp.Principal{0x01, 0x02, 0x03}
)

func TestNativeTransfer(t *testing.T) {
	l := inmemoryledger.NewNativeLedger(0, 0)
	var sub, otherSub [32]byte
	otherSub[31] = 1
	from := icp.NewAccountIdentifier(owner, sub).String()
	to := icp.NewAccountIdentifier(owner, otherSub).String()

	_, err := l.Mint(from, 1_000_000)
	require.NoError(t, err)

	fee, err := l.TransferFee(ctx)
	require.NoError(t, err)
	require.Equal(t, inmemoryledger.DefaultTransferFee, fee)

	index, err := l.Transfer(ctx, ports.TransferArgs{
		From: owner, Subaccount: sub, To: to, Amount: 400_000,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), index)

	balance, err := l.AccountBalance(ctx, from)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000-400_000-10_000), balance)

	balance, err = l.AccountBalance(ctx, to)
	require.NoError(t, err)
	require.Equal(t, uint64(400_000), balance)

	tests := []struct {
		name string
		args ports.TransferArgs
		err  error
	}{
		{
			name: "insufficient funds",
			args: ports.TransferArgs{From: owner, Subaccount: sub, To: to, Amount: 590_001},
			err:  inmemoryledger.ErrInsufficientFunds,
		},
		{
			name: "zero amount",
			args: ports.TransferArgs{From: owner, Subaccount: sub, To: to},
			err:  inmemoryledger.ErrInvalidAmount,
		},
		{
			name: "invalid destination",
			args: ports.TransferArgs{From: owner, Subaccount: sub, To: "abc", Amount: 1},
			err:  inmemoryledger.ErrInvalidDestination,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Transfer(ctx, tt.args)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNotifyTopUp(t *testing.T) {
	l := inmemoryledger.NewNativeLedger(0, 0)
	var sub [32]byte
	from := icp.NewAccountIdentifier(owner, sub).String()
	_, err := l.Mint(from, 1_000_000)
	require.NoError(t, err)

	cmcAccount, err := l.CyclesMintingAccount(ctx, testCanister)
	require.NoError(t, err)
	require.Len(t, cmcAccount, 64)

	plain, err := l.Transfer(ctx, ports.TransferArgs{
		From: owner, Subaccount: sub, To: cmcAccount, Amount: 1000,
	})
	require.NoError(t, err)
	_, err = l.NotifyTopUp(ctx, plain, testCanister)
	require.ErrorIs(t, err, inmemoryledger.ErrInvalidTopUp)

	topUp, err := l.Transfer(ctx, ports.TransferArgs{
		From: owner, Subaccount: sub, To: cmcAccount, Amount: 5000, Memo: topUpMemo,
	})
	require.NoError(t, err)

	cycles, err := l.NotifyTopUp(ctx, topUp, testCanister)
	require.NoError(t, err)
	require.Equal(t, 5000*inmemoryledger.DefaultCyclesPerE8s, cycles)

	again, err := l.NotifyTopUp(ctx, topUp, testCanister)
	require.NoError(t, err)
	require.Equal(t, cycles, again)
	require.Equal(t, cycles, l.CanisterCycles(testCanister))

	_, err = l.NotifyTopUp(ctx, 100, testCanister)
	require.ErrorIs(t, err, inmemoryledger.ErrBlockNotFound)

	_, err = l.CyclesMintingAccount(ctx, "not-a-principal")
	require.Error(t, err)
}
