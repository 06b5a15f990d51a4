package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

type repoManager struct {
	walletStore    *badgerhold.Store
	operationStore *badgerhold.Store

	walletRepository    domain.WalletRepository
	operationRepository domain.OperationRepository
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger. An empty base dir opens
// the stores in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var walletDir, operationDir string
	if len(baseDbDir) > 0 {
		walletDir = filepath.Join(baseDbDir, "wallet")
		operationDir = filepath.Join(baseDbDir, "operations")
	}

	walletDb, err := createDb(walletDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}

	operationDb, err := createDb(operationDir, logger)
	if err != nil {
		walletDb.Close()
		return nil, fmt.Errorf("opening operations db: %w", err)
	}

	return &repoManager{
		walletStore:         walletDb,
		operationStore:      operationDb,
		walletRepository:    NewWalletRepositoryImpl(walletDb),
		operationRepository: NewOperationRepositoryImpl(operationDb),
	}, nil
}

func (d *repoManager) WalletRepository() domain.WalletRepository {
	return d.walletRepository
}

func (d *repoManager) OperationRepository() domain.OperationRepository {
	return d.operationRepository
}

func (d *repoManager) Close() {
	d.walletStore.Close()
	d.operationStore.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
