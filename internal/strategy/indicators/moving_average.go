package indicators

// EMA computes the exponential moving average of prices.
// The first period values all hold the simple mean of the first period prices;
// from index period onward ema[i] = price[i]*k + ema[i-1]*(1-k), k = 2/(period+1).
// Returns an empty series when len(prices) < period.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	multiplier := 2 / float64(period+1)
	ema := make([]float64, len(prices))
	seed := mean(prices[:period])
	for i := 0; i < period; i++ {
		ema[i] = seed
	}

	// Explicit float64 conversions keep each product rounded (no FMA fusion).
	for i := period; i < len(prices); i++ {
		ema[i] = float64(prices[i]*multiplier) + float64(ema[i-1]*(1-multiplier))
	}
	return ema
}

// SMA computes the simple moving average of prices. The output has the same
// length as the input: indices before the first full window repeat the first
// available average. Returns an empty series when len(prices) < period.
// Unlike EMA, RSI and ATR, SMA is not guaranteed bit-exact with a kernel dot product.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	weight := 1 / float64(period)
	sma := make([]float64, len(prices))
	for i := period - 1; i < len(prices); i++ {
		total := 0.0
		for j := i - period + 1; j <= i; j++ {
			total += float64(prices[j] * weight)
		}
		sma[i] = total
	}
	for i := 0; i < period-1; i++ {
		sma[i] = sma[period-1]
	}
	return sma
}
