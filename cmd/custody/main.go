package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tdex-network/custody-daemon/internal/config"
	"github.com/tdex-network/custody-daemon/internal/core/application"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/bitcoin/esplora"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/evm/jsonrpc"
	inmemoryledger "github.com/tdex-network/custody-daemon/internal/infrastructure/ledger/inmemory"
	webhookpubsub "github.com/tdex-network/custody-daemon/internal/infrastructure/pubsub/webhook"
	localsigner "github.com/tdex-network/custody-daemon/internal/infrastructure/signer/local"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

var (
	appConfig *application.Config
	closers   []func()

	asFlag = &cli.StringFlag{
		Name:    "as",
		Usage:   "id of the signer issuing the command",
		EnvVars: []string{"CUSTODY_SIGNER_ID"},
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "custody"
	app.Usage = "Command line interface for operators of the custody wallet"
	app.Flags = []cli.Flag{asFlag}
	app.Before = setup
	app.After = teardown
	app.Commands = append(
		app.Commands,
		&initwallet,
		&info,
		&signers,
		&accounts,
		&account,
		&pubkey,
		&address,
		&balance,
		&checkpending,
		&removepending,
		&propose,
		&respond,
		&execute,
		&operations,
		&operation,
		&sweep,
		&webhook,
		&webhooks,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func setup(_ *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(config.GetLogLevel())

	cfg, err := newAppConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg
	closers = append(closers, cfg.RepoManager().Close)
	return nil
}

func teardown(_ *cli.Context) error {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	return nil
}

// newAppConfig wires the services to the collaborators selected by the
// config. The native ledger and the bridge are simulated in memory.
func newAppConfig() (*application.Config, error) {
	network := config.GetBitcoinNetwork()

	signer, err := localsigner.NewSigner(config.GetSignerSeed())
	if err != nil {
		return nil, err
	}

	bitcoinSvc, err := esplora.NewService(esplora.Config{
		URLs:              map[btc.Network]string{network: config.GetString(config.EsploraURLKey)},
		RequestsPerSecond: config.GetInt(config.EsploraRequestsPerSecondKey),
		RequestTimeout:    config.GetDuration(config.EsploraRequestTimeoutKey),
	})
	if err != nil {
		return nil, err
	}

	bridge, err := inmemoryledger.NewBridge(inmemoryledger.BridgeConfig{
		Networks: []btc.Network{network},
		Bitcoin:  bitcoinSvc,
	})
	if err != nil {
		return nil, err
	}

	pubsub, err := webhookpubsub.NewService(webhookpubsub.Config{
		Datadir:        config.GetDbDir(),
		RequestTimeout: config.GetDuration(config.WebhookRequestTimeoutKey),
		Logger:         log.StandardLogger(),
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() {
		//nolint
		pubsub.Close()
	})

	cfg := &application.Config{
		DBType:          config.GetString(config.DBTypeKey),
		DBConfig:        config.GetDbDir(),
		Owner:           config.GetOwner(),
		Signer:          signer,
		Native:          inmemoryledger.NewNativeLedger(0, 0),
		Bitcoin:         bitcoinSvc,
		Bridge:          bridge,
		PubSub:          pubsub,
		OperationExpiry: config.GetDuration(config.OperationExpiryKey),
		DefaultFeeRate:  config.GetUint64(config.DefaultFeeRateKey),
		Clock:           time.Now,
	}

	if rpcURL := config.GetString(config.EvmRPCURLKey); rpcURL != "" {
		evmSvc, err := jsonrpc.NewService(map[uint64]string{
			config.GetUint64(config.EvmChainIDKey): rpcURL,
		})
		if err != nil {
			return nil, err
		}
		closers = append(closers, evmSvc.Close)
		cfg.Evm = evmSvc
	}
	return cfg, nil
}

func walletService() application.WalletService {
	return appConfig.WalletService()
}

func accountService() application.AccountService {
	return appConfig.AccountService()
}

func operationService() application.OperationService {
	return appConfig.OperationService()
}

func signerID(ctx *cli.Context) (string, error) {
	id := ctx.String(asFlag.Name)
	if id == "" {
		return "", fmt.Errorf("missing signer id, use --%s", asFlag.Name)
	}
	return id, nil
}

func printRespJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "   ")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[custody] %v\n", err)
	os.Exit(1)
}
