package application_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// **** Signer ****

// keySigner signs with a single in process key, whatever the derivation
// path. An error set with fail is returned by every call.
type keySigner struct {
	key  *ecdsa.PrivateKey
	fail error

	lock  sync.Mutex
	calls int
}

func newKeySigner() *keySigner {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &keySigner{key: key}
}

func (s *keySigner) PublicKey(_ context.Context, _ ports.SignerKey) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls++

	if s.fail != nil {
		return nil, s.fail
	}
	return crypto.CompressPubkey(&s.key.PublicKey), nil
}

func (s *keySigner) Sign(
	_ context.Context, _ ports.SignerKey, hash []byte,
) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls++

	if s.fail != nil {
		return nil, s.fail
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, err
	}
	return sig[:64], nil
}

func (s *keySigner) numCalls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls
}

// **** Bitcoin ****

type mockBitcoin struct {
	mock.Mock
}

func (m *mockBitcoin) GetBalance(
	ctx context.Context, network btc.Network, address string,
) (uint64, error) {
	args := m.Called(network, address)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
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

	var res btc.TxStatus
	if a := args.Get(0); a != nil {
		res = a.(btc.TxStatus)
	}
	return res, args.Error(1)
}

func (m *mockBitcoin) SendTransaction(
	ctx context.Context, network btc.Network, txHex string,
) (string, error) {
	args := m.Called(network, txHex)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

// **** Evm ****

type mockEvm struct {
	mock.Mock
}

func (m *mockEvm) GetBalance(
	ctx context.Context, chainID uint64, address string,
) (*big.Int, error) {
	args := m.Called(chainID, address)

	var res *big.Int
	if a := args.Get(0); a != nil {
		res = a.(*big.Int)
	}
	return res, args.Error(1)
}

func (m *mockEvm) GetNonce(
	ctx context.Context, chainID uint64, address string,
) (uint64, error) {
	args := m.Called(chainID, address)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockEvm) SuggestGasPrice(
	ctx context.Context, chainID uint64,
) (*big.Int, error) {
	args := m.Called(chainID)

	var res *big.Int
	if a := args.Get(0); a != nil {
		res = a.(*big.Int)
	}
	return res, args.Error(1)
}

func (m *mockEvm) SuggestGasTipCap(
	ctx context.Context, chainID uint64,
) (*big.Int, error) {
	args := m.Called(chainID)

	var res *big.Int
	if a := args.Get(0); a != nil {
		res = a.(*big.Int)
	}
	return res, args.Error(1)
}

func (m *mockEvm) SendRawTransaction(
	ctx context.Context, chainID uint64, rawTx []byte,
) (string, error) {
	args := m.Called(chainID, rawTx)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockEvm) IsConfirmed(
	ctx context.Context, chainID uint64, txHash string,
) (bool, error) {
	args := m.Called(chainID, txHash)

	var res bool
	if a := args.Get(0); a != nil {
		res = a.(bool)
	}
	return res, args.Error(1)
}

// **** Native ledger ****

type mockNativeLedger struct {
	mock.Mock
}

func (m *mockNativeLedger) AccountBalance(
	ctx context.Context, accountID string,
) (uint64, error) {
	args := m.Called(accountID)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockNativeLedger) Transfer(
	ctx context.Context, transferArgs ports.TransferArgs,
) (uint64, error) {
	args := m.Called(transferArgs)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockNativeLedger) TransferFee(ctx context.Context) (uint64, error) {
	args := m.Called()

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockNativeLedger) NotifyTopUp(
	ctx context.Context, blockIndex uint64, canisterID string,
) (uint64, error) {
	args := m.Called(blockIndex, canisterID)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockNativeLedger) CyclesMintingAccount(
	ctx context.Context, canisterID string,
) (string, error) {
	args := m.Called(canisterID)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

// **** Bridge ****

type mockBridge struct {
	mock.Mock
}

func (m *mockBridge) Balance(
	ctx context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) (uint64, error) {
	args := m.Called(network, owner, subaccount)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockBridge) Transfer(
	ctx context.Context, network btc.Network, transferArgs ports.TransferArgs,
) (uint64, error) {
	args := m.Called(network, transferArgs)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockBridge) GetBtcAddress(
	ctx context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) (string, error) {
	args := m.Called(network, owner, subaccount)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockBridge) UpdateBalance(
	ctx context.Context, network btc.Network, owner icp.Principal,
	subaccount [32]byte,
) ([]ports.MintedUtxo, error) {
	args := m.Called(network, owner, subaccount)

	var res []ports.MintedUtxo
	if a := args.Get(0); a != nil {
		res = a.([]ports.MintedUtxo)
	}
	return res, args.Error(1)
}

func (m *mockBridge) RetrieveBtc(
	ctx context.Context, network btc.Network, transferArgs ports.TransferArgs,
) (uint64, error) {
	args := m.Called(network, transferArgs)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockBridge) RetrieveBtcStatus(
	ctx context.Context, network btc.Network, blockIndex uint64,
) (ports.RetrieveStatus, error) {
	args := m.Called(network, blockIndex)

	var res ports.RetrieveStatus
	if a := args.Get(0); a != nil {
		res = a.(ports.RetrieveStatus)
	}
	return res, args.Error(1)
}

// **** Clock ****

type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// **** PubSub ****

type publishedMessage struct {
	topic   string
	message string
}

// recordingPubSub keeps every published message in memory.
type recordingPubSub struct {
	lock      sync.Mutex
	published []publishedMessage
}

func (p *recordingPubSub) Subscribe(_, _, _ string) (string, error) {
	return "", nil
}

func (p *recordingPubSub) Unsubscribe(_ string) error {
	return nil
}

func (p *recordingPubSub) ListSubscriptionsForTopic(_ string) []ports.Subscription {
	return nil
}

func (p *recordingPubSub) Publish(topic, message string) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.published = append(p.published, publishedMessage{topic, message})
	return nil
}

func (p *recordingPubSub) Close() error {
	return nil
}

func (p *recordingPubSub) messages(topic string) []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	msgs := make([]string, 0)
	for _, m := range p.published {
		if m.topic == topic {
			msgs = append(msgs, m.message)
		}
	}
	return msgs
}
