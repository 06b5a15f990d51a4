package domain_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

func TestNewLedger(t *testing.T) {
	sub := domain.NewSubaccount(domain.Production, 2)
	ledger := domain.NewLedger(icp.ManagementCanister, sub)

	require.False(t, ledger.HasPublicKey())
	require.Len(t, ledger.Chains, 1)

	chain, err := ledger.GetChain(domain.NativeLedgerChain())
	require.NoError(t, err)
	require.Equal(
		t, icp.NewAccountIdentifier(icp.ManagementCanister, sub).String(),
		chain.Address,
	)
	require.Empty(t, chain.Pending)
}

func TestLedgerSetPublicKey(t *testing.T) {
	ledger := domain.NewLedger(icp.ManagementCanister, domain.NewSubaccount(domain.Production, 1))
	pubkey := newPublicKey(t)

	require.ErrorIs(t, ledger.SetPublicKey(pubkey[:32]), domain.ErrInvalidPublicKey)
	require.ErrorIs(t, ledger.SetPublicKey(make([]byte, 33)), domain.ErrInvalidPublicKey)
	require.False(t, ledger.HasPublicKey())

	require.NoError(t, ledger.SetPublicKey(pubkey))
	require.Equal(t, pubkey, ledger.PublicKey)

	btcChain, err := ledger.GetChain(domain.BitcoinChain(btc.Mainnet))
	require.NoError(t, err)
	expectedAddress, err := btc.AddressFromPublicKey(pubkey, btc.Mainnet)
	require.NoError(t, err)
	require.Equal(t, expectedAddress, btcChain.Address)

	evmChain, err := ledger.GetChain(domain.EvmChain(0))
	require.NoError(t, err)
	require.Len(t, evmChain.Address, 42)

	require.ErrorIs(t, ledger.SetPublicKey(newPublicKey(t)), domain.ErrPublicKeyAlreadySet)
	require.Equal(t, pubkey, ledger.PublicKey)
}

func TestLedgerCreateAddress(t *testing.T) {
	ledger := domain.NewLedger(icp.ManagementCanister, domain.NewSubaccount(domain.Staging, 0))

	_, err := ledger.CreateAddress(domain.BitcoinChain(btc.Testnet))
	require.ErrorIs(t, err, domain.ErrPublicKeyNotSet)

	bridge, err := ledger.CreateAddress(domain.BridgeChain(btc.Mainnet))
	require.NoError(t, err)
	require.Contains(t, bridge.Address, icp.ManagementCanister.String())

	_, err = ledger.CreateAddress(domain.BridgeChain(btc.Mainnet))
	require.ErrorIs(t, err, domain.ErrChainAlreadyExists)

	require.NoError(t, ledger.SetPublicKey(newPublicKey(t)))

	chain, err := ledger.CreateAddress(domain.BitcoinChain(btc.Testnet))
	require.NoError(t, err)
	require.NoError(t, btc.ValidateAddress(chain.Address, btc.Testnet))

	chain, err = ledger.CreateAddress(domain.EvmChain(1))
	require.NoError(t, err)
	evmDefault, err := ledger.GetChain(domain.EvmChain(0))
	require.NoError(t, err)
	require.Equal(t, evmDefault.Address, chain.Address)

	err = ledger.InsertChain(domain.NewChain(domain.NativeLedgerChain(), "addr"))
	require.ErrorIs(t, err, domain.ErrChainAlreadyExists)

	_, err = ledger.GetChain(domain.EvmChain(10))
	require.ErrorIs(t, err, domain.ErrChainNotFound)
}

func TestLedgerPending(t *testing.T) {
	ledger := domain.NewLedger(icp.ManagementCanister, domain.NewSubaccount(domain.Production, 1))
	native := domain.NativeLedgerChain()

	first := domain.NewNativeLedgerPending(10, "")
	second := domain.NewNativeLedgerPending(11, "ryjl3-tyaaa-aaaaa-aaaba-cai")

	require.NoError(t, ledger.AddPending(native, first))
	require.NoError(t, ledger.AddPending(native, second))
	// Adding the same entry twice is a no-op.
	require.NoError(t, ledger.AddPending(native, first))
	require.ErrorIs(
		t, ledger.AddPending(native, domain.NewEvmPending("0x01")),
		domain.ErrInvalidPending,
	)
	require.ErrorIs(
		t, ledger.AddPending(domain.EvmChain(1), domain.NewEvmPending("0x01")),
		domain.ErrChainNotFound,
	)

	removed, err := ledger.RemovePending(native, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, removed.ID)
	require.Equal(t, "10", removed.Reference())

	_, err = ledger.RemovePending(native, first.ID)
	require.ErrorIs(t, err, domain.ErrPendingNotFound)

	chain, err := ledger.GetChain(native)
	require.NoError(t, err)
	require.Len(t, chain.Pending, 1)
	require.Equal(t, second.ID, chain.Pending[0].ID)
}

func TestLedgerBridgeStatus(t *testing.T) {
	ledger := domain.NewLedger(icp.ManagementCanister, domain.NewSubaccount(domain.Production, 1))
	require.NoError(t, ledger.SetPublicKey(newPublicKey(t)))
	bridge := domain.BridgeChain(btc.Mainnet)
	_, err := ledger.CreateAddress(bridge)
	require.NoError(t, err)

	retrieval := domain.NewBridgeRetrievePending(9)
	require.NoError(t, ledger.AddPending(bridge, retrieval))
	require.NoError(t, ledger.AddPending(domain.NativeLedgerChain(), domain.NewNativeLedgerPending(1, "")))

	require.NoError(t, ledger.SetBridgeStatus(bridge, retrieval.ID, "submitted"))
	chain, err := ledger.GetChain(bridge)
	require.NoError(t, err)
	require.Equal(t, "submitted", chain.Pending[0].Bridge.Status)

	native, err := ledger.GetChain(domain.NativeLedgerChain())
	require.NoError(t, err)
	require.ErrorIs(
		t, ledger.SetBridgeStatus(domain.NativeLedgerChain(), native.Pending[0].ID, "submitted"),
		domain.ErrInvalidPending,
	)
	require.ErrorIs(
		t, ledger.SetBridgeStatus(bridge, "unknown", "submitted"),
		domain.ErrPendingNotFound,
	)
}

func TestLedgerClone(t *testing.T) {
	ledger := domain.NewLedger(icp.ManagementCanister, domain.NewSubaccount(domain.Production, 1))
	require.NoError(t, ledger.SetPublicKey(newPublicKey(t)))

	cpy := ledger.Clone()
	require.Equal(t, ledger, cpy)

	require.NoError(t, cpy.AddPending(domain.NativeLedgerChain(), domain.NewNativeLedgerPending(1, "")))
	chain, _ := ledger.GetChain(domain.NativeLedgerChain())
	require.Empty(t, chain.Pending)
}

func TestParseChainID(t *testing.T) {
	tests := []domain.ChainID{
		domain.NativeLedgerChain(),
		domain.BitcoinChain(btc.Mainnet),
		domain.BitcoinChain(btc.Regtest),
		domain.EvmChain(0),
		domain.EvmChain(137),
		domain.BridgeChain(btc.Testnet),
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.String(), func(t *testing.T) {
			t.Parallel()

			parsed, err := domain.ParseChainID(tt.String())
			require.NoError(t, err)
			require.Equal(t, tt, parsed)
		})
	}

	for _, s := range []string{"sol", "btc:signet", "evm:x", "icp:1"} {
		_, err := domain.ParseChainID(s)
		require.ErrorIs(t, err, domain.ErrUnknownChain)
	}
}

func newPublicKey(t *testing.T) []byte {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key.PubKey().SerializeCompressed()
}
