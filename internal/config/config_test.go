package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custody-daemon/internal/config"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

const testSeed = "000102030405060708090a0b0c0d0e0f"

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("CUSTODY_DATADIR", datadir)
	t.Setenv("CUSTODY_SIGNER_SEED", testSeed)
	t.Setenv("CUSTODY_BITCOIN_NETWORK", "testnet")
	t.Setenv("CUSTODY_ENVIRONMENT", "staging")

	require.NoError(t, config.InitConfig())

	require.Equal(t, domain.Staging, config.GetEnvironment())
	require.Equal(t, btc.Testnet, config.GetBitcoinNetwork())
	require.Equal(t, "aaaaa-aa", config.GetOwner().String())
	require.Len(t, config.GetSignerSeed(), 16)
	require.Equal(t, "https://blockstream.info/testnet/api", config.GetString(config.EsploraURLKey))
	require.Equal(t, filepath.Join(datadir, config.DbLocation), config.GetDbDir())
	require.DirExists(t, config.GetDbDir())
}

func TestFailingInitConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing signer seed",
			env:  map[string]string{},
		},
		{
			name: "short signer seed",
			env:  map[string]string{"CUSTODY_SIGNER_SEED": "0001"},
		},
		{
			name: "long signer seed",
			env:  map[string]string{"CUSTODY_SIGNER_SEED": strings.Repeat("00", 65)},
		},
		{
			name: "unknown environment",
			env:  map[string]string{"CUSTODY_ENVIRONMENT": "qa"},
		},
		{
			name: "invalid owner",
			env:  map[string]string{"CUSTODY_OWNER_PRINCIPAL": "aaaaa-ab"},
		},
		{
			name: "unknown network",
			env:  map[string]string{"CUSTODY_BITCOIN_NETWORK": "signet"},
		},
		{
			name: "unsupported db",
			env:  map[string]string{"CUSTODY_DB_TYPE": "postgres"},
		},
		{
			name: "invalid esplora url",
			env:  map[string]string{"CUSTODY_ESPLORA_URL": "ftp://example.com"},
		},
		{
			name: "evm without chain id",
			env: map[string]string{
				"CUSTODY_EVM_RPC_URL":  "http://localhost:8545",
				"CUSTODY_EVM_CHAIN_ID": "0",
			},
		},
		{
			name: "invalid operation expiry",
			env:  map[string]string{"CUSTODY_OPERATION_EXPIRY": "-1h"},
		},
		{
			name: "invalid webhook timeout",
			env:  map[string]string{"CUSTODY_WEBHOOK_REQUEST_TIMEOUT": "0s"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CUSTODY_DATADIR", t.TempDir())
			if _, ok := tt.env["CUSTODY_SIGNER_SEED"]; !ok && tt.name != "missing signer seed" {
				t.Setenv("CUSTODY_SIGNER_SEED", testSeed)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Error(t, config.InitConfig())
		})
	}
}
