package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/custody-daemon/internal/core/application"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/btc"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

const (
	// DatadirKey is the local data directory to store the internal state of
	// the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// EnvironmentKey is the environment of new accounts. It selects the key of
	// the threshold signer.
	EnvironmentKey = "ENVIRONMENT"
	// OwnerPrincipalKey is the principal owning every subaccount
	OwnerPrincipalKey = "OWNER_PRINCIPAL"
	// BitcoinNetworkKey is the network of the bitcoin data source
	BitcoinNetworkKey = "BITCOIN_NETWORK"
	// EsploraURLKey is the endpoint of the esplora REST API
	EsploraURLKey = "ESPLORA_URL"
	// EsploraRequestsPerSecondKey caps the requests made to the esplora API
	EsploraRequestsPerSecondKey = "ESPLORA_REQUESTS_PER_SECOND"
	// EsploraRequestTimeoutKey is the timeout of every esplora request
	EsploraRequestTimeoutKey = "ESPLORA_REQUEST_TIMEOUT"
	// EvmRPCURLKey is the JSON-RPC endpoint of the EVM node. EVM broadcast is
	// disabled if empty.
	EvmRPCURLKey = "EVM_RPC_URL"
	// EvmChainIDKey is the chain id served by the EVM node
	EvmChainIDKey = "EVM_CHAIN_ID"
	// SignerSeedKey is the hex encoded seed of the development signer
	SignerSeedKey = "SIGNER_SEED"
	// OperationExpiryKey is the default lifetime of a proposed operation
	OperationExpiryKey = "OPERATION_EXPIRY"
	// DefaultFeeRateKey is the bitcoin fee rate, in millisat/byte, used when
	// the data source returns no estimate
	DefaultFeeRateKey = "DEFAULT_FEE_RATE"
	// WebhookRequestTimeoutKey is the timeout of every webhook notification
	WebhookRequestTimeoutKey = "WEBHOOK_REQUEST_TIMEOUT"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("custody-daemon", false)

var defaultEsploraURLs = map[btc.Network]string{
	btc.Mainnet: "https://blockstream.info/api",
	btc.Testnet: "https://blockstream.info/testnet/api",
	btc.Regtest: "http://localhost:3000",
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("CUSTODY")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(EnvironmentKey, domain.Production.String())
	vip.SetDefault(OwnerPrincipalKey, icp.ManagementCanister.String())
	vip.SetDefault(BitcoinNetworkKey, btc.Mainnet.String())
	vip.SetDefault(EsploraRequestsPerSecondKey, 10)
	vip.SetDefault(EsploraRequestTimeoutKey, 15*time.Second)
	vip.SetDefault(EvmChainIDKey, 1)
	vip.SetDefault(OperationExpiryKey, application.DefaultOperationExpiry)
	vip.SetDefault(DefaultFeeRateKey, application.DefaultFeeRate)
	vip.SetDefault(WebhookRequestTimeoutKey, 10*time.Second)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if !vip.IsSet(EsploraURLKey) {
		vip.SetDefault(EsploraURLKey, defaultEsploraURLs[GetBitcoinNetwork()])
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	if GetString(DBTypeKey) == application.DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

// GetEnvironment, GetOwner, GetBitcoinNetwork and GetSignerSeed parse
// values already checked by validate.

func GetEnvironment() domain.Environment {
	env, _ := domain.ParseEnvironment(GetString(EnvironmentKey))
	return env
}

func GetOwner() icp.Principal {
	owner, _ := icp.ParsePrincipal(GetString(OwnerPrincipalKey))
	return owner
}

func GetBitcoinNetwork() btc.Network {
	network, _ := btc.ParseNetwork(GetString(BitcoinNetworkKey))
	return network
}

func GetSignerSeed() []byte {
	seed, _ := hex.DecodeString(GetString(SignerSeedKey))
	return seed
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	level := GetInt(LogLevelKey)
	if level < int(log.PanicLevel) || level > int(log.TraceLevel) {
		return fmt.Errorf("%s must be in range [%d, %d]", LogLevelKey, log.PanicLevel, log.TraceLevel)
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("%s not supported", GetString(DBTypeKey))
	}

	if _, err := domain.ParseEnvironment(GetString(EnvironmentKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", EnvironmentKey, err)
	}
	if _, err := icp.ParsePrincipal(GetString(OwnerPrincipalKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", OwnerPrincipalKey, err)
	}
	if _, err := btc.ParseNetwork(GetString(BitcoinNetworkKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", BitcoinNetworkKey, err)
	}

	if vip.IsSet(EsploraURLKey) {
		if err := validateURL(GetString(EsploraURLKey)); err != nil {
			return fmt.Errorf("invalid %s: %s", EsploraURLKey, err)
		}
	}
	if GetInt(EsploraRequestsPerSecondKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", EsploraRequestsPerSecondKey)
	}

	if rpcURL := GetString(EvmRPCURLKey); rpcURL != "" {
		if err := validateURL(rpcURL); err != nil {
			return fmt.Errorf("invalid %s: %s", EvmRPCURLKey, err)
		}
		if GetUint64(EvmChainIDKey) == 0 {
			return fmt.Errorf("%s must be greater than zero", EvmChainIDKey)
		}
	}

	seed, err := hex.DecodeString(GetString(SignerSeedKey))
	if err != nil {
		return fmt.Errorf("%s must be hex encoded", SignerSeedKey)
	}
	if len(seed) < 16 {
		return fmt.Errorf("%s must be at least 16 bytes long", SignerSeedKey)
	}
	if len(seed) > 64 {
		return fmt.Errorf("%s must be at most 64 bytes long", SignerSeedKey)
	}

	if GetDuration(OperationExpiryKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", OperationExpiryKey)
	}
	if GetUint64(DefaultFeeRateKey) == 0 {
		return fmt.Errorf("%s must be greater than zero", DefaultFeeRateKey)
	}
	if GetDuration(WebhookRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", WebhookRequestTimeoutKey)
	}

	return nil
}

func validateURL(str string) error {
	u, err := url.Parse(str)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func initDatadir() error {
	if dbDir := GetDbDir(); dbDir != "" {
		return makeDirectoryIfNotExists(dbDir)
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
