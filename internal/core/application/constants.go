package application

import "time"

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	// TopUpMemo is the memo of native ledger transfers to the cycles minting
	// account ("TPUP").
	TopUpMemo = uint64(0x50555054)
	// EvmTransferGas is the gas limit of a plain value transfer.
	EvmTransferGas = uint64(21000)

	DefaultOperationExpiry = 7 * 24 * time.Hour
	// DefaultFeeRate is used when the bitcoin data source returns no fee
	// percentiles, ie. on regtest. Expressed in millisat/byte.
	DefaultFeeRate = uint64(2000)
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)
