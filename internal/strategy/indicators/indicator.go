// Package indicators implements the numeric price transforms used by the
// signal synthesizer. Every function is pure, returns a series aligned with its
// input (value i only uses inputs 0..i) and returns an empty series instead of
// an error when the input is too short.
package indicators

import "signalBot/internal/domain"

// Default periods used by the synthesizer.
const (
	DefaultRSIPeriod      = 14
	DefaultATRPeriod      = 14
	DefaultLevelsWindow   = 20
	levelClusterThreshold = 0.001
)

// pairwiseBlock is the largest slice summed with eight running accumulators
// before the sum is split in two halves.
const pairwiseBlock = 128

// Closes extracts the close prices of bars.
func Closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices of bars.
func Highs(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices of bars.
func Lows(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Last returns the final value of a series and whether the series had one.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// mean averages xs using pairwise summation. The summation order (eight
// interleaved accumulators per block of up to 128 values, halves beyond that)
// is fixed so that seeded values are reproducible bit for bit.
func mean(xs []float64) float64 {
	return pairwiseSum(xs) / float64(len(xs))
}

func pairwiseSum(xs []float64) float64 {
	n := len(xs)
	switch {
	case n < 8:
		res := 0.0
		for _, x := range xs {
			res += x
		}
		return res
	case n <= pairwiseBlock:
		var r [8]float64
		copy(r[:], xs[:8])
		i := 8
		for ; i < n-n%8; i += 8 {
			for j := 0; j < 8; j++ {
				r[j] += xs[i+j]
			}
		}
		res := ((r[0] + r[1]) + (r[2] + r[3])) + ((r[4] + r[5]) + (r[6] + r[7]))
		for ; i < n; i++ {
			res += xs[i]
		}
		return res
	default:
		n2 := n / 2
		n2 -= n2 % 8
		return pairwiseSum(xs[:n2]) + pairwiseSum(xs[n2:])
	}
}
