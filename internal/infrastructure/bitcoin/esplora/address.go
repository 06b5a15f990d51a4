package esplora

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

func (e *esplora) GetBalance(
	ctx context.Context, network btc.Network, address string,
) (uint64, error) {
	apiURL, err := e.apiURL(network)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/address/%s", apiURL, address)
	resp, err := e.call(ctx, "GET", url, "", nil)
	if err != nil {
		return 0, fmt.Errorf("error on retrieving balance: %w", err)
	}

	var info addressInfo
	if err := json.Unmarshal([]byte(resp), &info); err != nil {
		return 0, fmt.Errorf("error on retrieving balance: %s", err)
	}
	return info.balance(), nil
}

func (e *esplora) GetUtxos(
	ctx context.Context, network btc.Network, address string,
) ([]btc.Utxo, error) {
	apiURL, err := e.apiURL(network)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/address/%s/utxo", apiURL, address)
	resp, err := e.call(ctx, "GET", url, "", nil)
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}

	var outs []utxo
	if err := json.Unmarshal([]byte(resp), &outs); err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %s", err)
	}

	utxos := make([]btc.Utxo, 0, len(outs))
	for _, u := range outs {
		utxos = append(utxos, u.toUtxo())
	}
	return utxos, nil
}
