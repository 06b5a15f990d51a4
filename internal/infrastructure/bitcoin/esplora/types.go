package esplora

import "github.com/tdex-network/custody-daemon/pkg/btc"

type status struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height"`
}

type utxo struct {
	Txid   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  uint64 `json:"value"`
	Status status `json:"status"`
}

func (s status) toTxStatus() btc.TxStatus {
	return btc.TxStatus{
		Confirmed:   s.Confirmed,
		BlockHeight: s.BlockHeight,
	}
}

func (u utxo) toUtxo() btc.Utxo {
	return btc.Utxo{
		TxID:   u.Txid,
		Vout:   u.Vout,
		Value:  u.Value,
		Height: u.Status.BlockHeight,
	}
}

type stats struct {
	FundedTxoSum uint64 `json:"funded_txo_sum"`
	SpentTxoSum  uint64 `json:"spent_txo_sum"`
}

type addressInfo struct {
	Address      string `json:"address"`
	ChainStats   stats  `json:"chain_stats"`
	MempoolStats stats  `json:"mempool_stats"`
}

// balance is the confirmed balance of the address minus what the mempool
// already spends from it.
func (a addressInfo) balance() uint64 {
	confirmed := a.ChainStats.FundedTxoSum - a.ChainStats.SpentTxoSum
	if a.MempoolStats.SpentTxoSum >= confirmed {
		return 0
	}
	return confirmed - a.MempoolStats.SpentTxoSum
}
