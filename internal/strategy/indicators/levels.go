package indicators

import (
	"math"
	"sort"
)

// SupportResistance finds pivot levels in prices.
//
// For every index i in [window, len-window) the price is compared with the
// 2*window wide slice prices[i-window : i+window]: equal to its minimum marks a
// support, otherwise equal to its maximum marks a resistance. Each list is then
// clustered (see clusterLevels). Both lists are empty when len(prices) < window.
func SupportResistance(prices []float64, window int) (supports, resistances []float64) {
	if window <= 0 || len(prices) < window {
		return []float64{}, []float64{}
	}

	var rawSupports, rawResistances []float64
	for i := window; i < len(prices)-window; i++ {
		slice := prices[i-window : i+window]
		localMin := minOf(slice[0], slice[1:]...)
		localMax := maxOf(slice[0], slice[1:]...)

		if prices[i] == localMin {
			rawSupports = append(rawSupports, prices[i])
		} else if prices[i] == localMax {
			rawResistances = append(rawResistances, prices[i])
		}
	}

	return clusterLevels(rawSupports, levelClusterThreshold), clusterLevels(rawResistances, levelClusterThreshold)
}

// clusterLevels sorts levels ascending and merges a level into the open cluster
// while its distance to the cluster's last member, relative to that member, is
// below threshold. Each cluster is reported as its mean.
func clusterLevels(levels []float64, threshold float64) []float64 {
	if len(levels) == 0 {
		return []float64{}
	}

	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	clustered := make([]float64, 0, len(sorted))
	current := []float64{sorted[0]}
	for _, level := range sorted[1:] {
		last := current[len(current)-1]
		if math.Abs(level-last)/last < threshold {
			current = append(current, level)
			continue
		}
		clustered = append(clustered, mean(current))
		current = []float64{level}
	}
	return append(clustered, mean(current))
}
