package application

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/custody-daemon/pkg/icp"
)

// Config wires the application services to the storage and to the external
// collaborators. Services are built lazily and shared.
type Config struct {
	DBType   string
	DBConfig interface{}

	Owner   icp.Principal
	Signer  ports.Signer
	Native  ports.NativeLedgerService
	Bitcoin ports.BitcoinService
	Evm     ports.EvmService
	Bridge  ports.BridgeService
	// PubSub is optional.
	PubSub ports.PubSub

	OperationExpiry time.Duration
	DefaultFeeRate  uint64
	Clock           func() time.Time

	repo      ports.RepoManager
	wallet    WalletService
	account   AccountService
	operation OperationService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return ErrUnknownDBType
	}
	if c.Signer == nil || c.Native == nil || c.Bitcoin == nil || c.Bridge == nil {
		return ErrMissingCollaborator
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.operationService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) WalletService() WalletService {
	svc, _ := c.walletService()
	return svc
}

func (c *Config) AccountService() AccountService {
	svc, _ := c.accountService()
	return svc
}

func (c *Config) OperationService() OperationService {
	svc, _ := c.operationService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.StandardLogger())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, ErrUnknownDBType
		}
	}
	return c.repo, nil
}

func (c *Config) walletService() (WalletService, error) {
	if c.wallet == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		wallet, err := NewWalletService(repo, c.Owner)
		if err != nil {
			return nil, err
		}
		c.wallet = wallet
	}
	return c.wallet, nil
}

func (c *Config) accountService() (AccountService, error) {
	if c.account == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		feeRate := c.DefaultFeeRate
		if feeRate == 0 {
			feeRate = DefaultFeeRate
		}
		account, err := NewAccountService(
			repo, c.Signer, c.Native, c.Bitcoin, c.Evm, c.Bridge, c.PubSub, feeRate,
		)
		if err != nil {
			return nil, err
		}
		c.account = account
	}
	return c.account, nil
}

func (c *Config) operationService() (OperationService, error) {
	if c.operation == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		account, err := c.accountService()
		if err != nil {
			return nil, err
		}
		operation, err := NewOperationService(
			repo, account, c.PubSub, c.OperationExpiry, c.Clock,
		)
		if err != nil {
			return nil, err
		}
		c.operation = operation
	}
	return c.operation, nil
}
