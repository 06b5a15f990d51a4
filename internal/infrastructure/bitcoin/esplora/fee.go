package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tdex-network/custody-daemon/pkg/btc"
)

// GetCurrentFeePercentiles returns the fee estimates of the endpoint,
// sorted by confirmation target and converted from sat/vB to millisat/byte.
func (e *esplora) GetCurrentFeePercentiles(
	ctx context.Context, network btc.Network,
) ([]uint64, error) {
	apiURL, err := e.apiURL(network)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/fee-estimates", apiURL)
	resp, err := e.call(ctx, "GET", url, "", nil)
	if err != nil {
		return nil, fmt.Errorf("error on retrieving fee estimates: %w", err)
	}

	estimates := make(map[string]float64)
	if err := json.Unmarshal([]byte(resp), &estimates); err != nil {
		return nil, fmt.Errorf("error on retrieving fee estimates: %s", err)
	}

	targets := make([]int, 0, len(estimates))
	for target := range estimates {
		n, err := strconv.Atoi(target)
		if err != nil {
			continue
		}
		targets = append(targets, n)
	}
	sort.Ints(targets)

	percentiles := make([]uint64, 0, len(targets))
	for _, target := range targets {
		satPerVByte := estimates[strconv.Itoa(target)]
		if satPerVByte <= 0 {
			continue
		}
		percentiles = append(percentiles, uint64(math.Round(satPerVByte*1000)))
	}
	return percentiles, nil
}
