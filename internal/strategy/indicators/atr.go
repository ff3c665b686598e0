package indicators

import "math"

// ATR computes the Average True Range with Wilder smoothing.
//
// TR[0] is high[0]-low[0]; later TRs take the largest of the bar range and the
// gaps to the previous close. atr[period-1] is the mean of the first period TRs
// and indices before it hold 0. Returns an empty series when fewer than
// period+1 bars are given or the three series differ in length.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(high)
	if period <= 0 || n < period+1 || len(low) != n || len(close) != n {
		return []float64{}
	}

	trueRanges := make([]float64, n)
	trueRanges[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		trueRanges[i] = maxOf(
			high[i]-low[i],
			math.Abs(high[i]-close[i-1]),
			math.Abs(low[i]-close[i-1]),
		)
	}

	atr := make([]float64, n)
	atr[period-1] = mean(trueRanges[:period])

	p := float64(period)
	for i := period; i < n; i++ {
		atr[i] = (float64(atr[i-1]*(p-1)) + trueRanges[i]) / p
	}
	return atr
}

// maxOf keeps the first value unless a later one is strictly greater.
func maxOf(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v > m {
			m = v
		}
	}
	return m
}

// minOf keeps the first value unless a later one is strictly smaller.
func minOf(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}
