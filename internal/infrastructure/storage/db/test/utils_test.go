package db_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/custody-daemon/pkg/icp"
	"github.com/thanhpk/randstr"
)

type repoManager struct {
	name string
	ports.RepoManager
}

// newRepoManagers returns a fresh instance of every implementation. Badger
// stores are opened in memory.
func newRepoManagers(t *testing.T) []repoManager {
	badgerRepo, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepo.Close)

	return []repoManager{
		{"inmemory", inmemory.NewRepoManager()},
		{"badger", badgerRepo},
	}
}

func newWallet(t *testing.T) *domain.Wallet {
	w, err := domain.NewWallet(icp.ManagementCanister, "admin", randstr.String(8))
	require.NoError(t, err)
	return w
}

func newPublicKey(t *testing.T) []byte {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key.PubKey().SerializeCompressed()
}

func newOperation(t *testing.T, id uint64) *domain.Operation {
	now := time.Now().Unix()
	payload := domain.Payload{
		Kind: domain.OperationSendToken,
		SendToken: &domain.SendTokenPayload{
			AccountID:   domain.DefaultAccountID,
			Chain:       domain.NativeLedgerChain(),
			Destination: randstr.Hex(64),
			Amount:      big.NewInt(100000),
		},
	}
	op, err := domain.NewOperation(
		id, "admin", payload, randstr.String(12), now, now+3600,
		[]string{"admin", "alice", "bob"}, 2,
	)
	require.NoError(t, err)
	return op
}
