package indicators

// Momentum thresholds.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// RSI computes the Relative Strength Index with Wilder smoothing.
//
// The averages are seeded at index period with the mean of the first period
// gains and losses. RS is taken as 0 whenever the average loss is 0, so a
// window without losses (or without any movement) reports RSI = 0 rather than
// the textbook 100. Indices before period also report 0.
// Returns an empty series when len(prices) < period+1.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return []float64{}
	}

	n := len(prices)
	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i-1] = delta
		}
		if delta < 0 {
			losses[i-1] = -delta
		}
	}

	avgGain := make([]float64, n)
	avgLoss := make([]float64, n)
	avgGain[period] = mean(gains[:period])
	avgLoss[period] = mean(losses[:period])

	p := float64(period)
	for i := period + 1; i < n; i++ {
		avgGain[i] = (float64(avgGain[i-1]*(p-1)) + gains[i-1]) / p
		avgLoss[i] = (float64(avgLoss[i-1]*(p-1)) + losses[i-1]) / p
	}

	rsi := make([]float64, n)
	for i := range rsi {
		rs := 0.0
		if avgLoss[i] != 0 {
			rs = avgGain[i] / avgLoss[i]
		}
		rsi[i] = 100 - (100 / (1 + rs))
	}
	return rsi
}
