package esplora

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

func (e *esplora) SendTransaction(
	ctx context.Context, network btc.Network, txHex string,
) (string, error) {
	apiURL, err := e.apiURL(network)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/tx", apiURL)
	headers := map[string]string{
		"Content-Type": "text/plain",
	}
	resp, err := e.call(ctx, "POST", url, txHex, headers)
	if err != nil {
		return "", fmt.Errorf("error on broadcasting tx: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

func (e *esplora) GetTransactionStatus(
	ctx context.Context, network btc.Network, txid string,
) (btc.TxStatus, error) {
	apiURL, err := e.apiURL(network)
	if err != nil {
		return btc.TxStatus{}, err
	}

	url := fmt.Sprintf("%s/tx/%s/status", apiURL, txid)
	resp, err := e.call(ctx, "GET", url, "", nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return btc.TxStatus{}, nil
		}
		return btc.TxStatus{}, fmt.Errorf("error on retrieving tx status: %w", err)
	}

	var st status
	if err := json.Unmarshal([]byte(resp), &st); err != nil {
		return btc.TxStatus{}, fmt.Errorf("error on retrieving tx status: %s", err)
	}
	return st.toTxStatus(), nil
}
