package btc

import "sort"

// MedianFeeRate picks the median of the given fee percentiles, falling back
// to the provided default when none is available.
func MedianFeeRate(percentiles []uint64, fallback uint64) uint64 {
	if len(percentiles) == 0 {
		return fallback
	}
	sorted := append([]uint64{}, percentiles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}
