package inmemoryledger_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

type mockBitcoin struct {
	mock.Mock
}

func (m *mockBitcoin) GetBalance(
	ctx context.Context, network btc.Network, address string,
) (uint64, error) {
	args := m.Called(network, address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBitcoin) GetUtxos(
	ctx context.Context, network btc.Network, address string,
) ([]btc.Utxo, error) {
	args := m.Called(network, address)
	var res []btc.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]btc.Utxo)
	}
	return res, args.Error(1)
}

func (m *mockBitcoin) GetCurrentFeePercentiles(
	ctx context.Context, network btc.Network,
) ([]uint64, error) {
	args := m.Called(network)
	var res []uint64
	if a := args.Get(0); a != nil {
		res = a.([]uint64)
	}
	return res, args.Error(1)
}

func (m *mockBitcoin) GetTransactionStatus(
	ctx context.Context, network btc.Network, txid string,
) (btc.TxStatus, error) {
	args := m.Called(network, txid)
	return args.Get(0).(btc.TxStatus), args.Error(1)
}

func (m *mockBitcoin) SendTransaction(
	ctx context.Context, network btc.Network, txHex string,
) (string, error) {
	args := m.Called(network, txHex)
	return args.String(0), args.Error(1)
}
