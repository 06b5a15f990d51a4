package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/application"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const (
	adminID = "admin"
	// P2PKH addresses of the generator point public key.
	mainnetAddress = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
	testnetAddress = "mrCDrCybB6J1vRfbwM5hemdJz73FwDBC8r"
)

var ctx = context.Background()

type testEnv struct {
	cfg     *application.Config
	signer  *keySigner
	bitcoin *mockBitcoin
	evm     *mockEvm
	native  *mockNativeLedger
	bridge  *mockBridge
	pubsub  *recordingPubSub
	clock   *fakeClock
}

// newTestEnv returns services backed by an inmemory db, with an initialized
// wallet whose only signer is adminID.
func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		signer:  newKeySigner(),
		bitcoin: &mockBitcoin{},
		evm:     &mockEvm{},
		native:  &mockNativeLedger{},
		bridge:  &mockBridge{},
		pubsub:  &recordingPubSub{},
		clock:   newFakeClock(),
	}
	env.cfg = &application.Config{
		DBType:          application.DBInMemory,
		Owner:           icp.ManagementCanister,
		Signer:          env.signer,
		Native:          env.native,
		Bitcoin:         env.bitcoin,
		Evm:             env.evm,
		Bridge:          env.bridge,
		PubSub:          env.pubsub,
		OperationExpiry: time.Hour,
		Clock:           env.clock.Now,
	}
	require.NoError(t, env.cfg.Validate())
	require.NoError(t, env.cfg.WalletService().InitWallet(ctx, adminID, "Admin"))
	return env
}

func (e *testEnv) accounts() application.AccountService {
	return e.cfg.AccountService()
}

func (e *testEnv) operations() application.OperationService {
	return e.cfg.OperationService()
}
