package indicators

import (
	"testing"

	talib "github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		period   int
		expected []float64
	}{
		{
			name:     "seeded with the simple mean",
			prices:   []float64{1, 2, 3, 4, 5},
			period:   3,
			expected: []float64{2, 2, 2, 3, 4},
		},
		{
			name:     "period equals length",
			prices:   []float64{100, 102, 101},
			period:   3,
			expected: []float64{101, 101, 101},
		},
		{
			name:     "insufficient data",
			prices:   []float64{1, 2},
			period:   3,
			expected: []float64{},
		},
		{
			name:     "non-positive period",
			prices:   []float64{1, 2, 3},
			period:   0,
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EMA(tt.prices, tt.period))
		})
	}
}

func TestEMA_LengthAndSeed(t *testing.T) {
	prices := wave(80)
	for _, period := range []int{9, 21, 50} {
		ema := EMA(prices, period)
		require.Len(t, ema, len(prices))

		seed := mean(prices[:period])
		for i := 0; i < period; i++ {
			assert.Equal(t, seed, ema[i], "index %d of EMA(%d)", i, period)
		}
	}
}

// go-talib seeds its EMA the same way, so from the seed onward both series
// must agree up to summation-order noise.
func TestEMA_MatchesTalib(t *testing.T) {
	prices := wave(120)
	for _, period := range []int{9, 21} {
		ours := EMA(prices, period)
		ref := talib.Ema(prices, period)
		for i := period - 1; i < len(prices); i++ {
			assert.InDelta(t, ref[i], ours[i], 1e-9, "index %d of EMA(%d)", i, period)
		}
	}
}

func TestSMA(t *testing.T) {
	sma := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, sma, 5)
	for i, want := range []float64{2, 2, 2, 3, 4} {
		assert.InDelta(t, want, sma[i], 1e-12, "index %d", i)
	}

	assert.Empty(t, SMA([]float64{1, 2}, 3))
}

func TestSMA_MatchesTalib(t *testing.T) {
	prices := wave(60)
	ours := SMA(prices, 20)
	ref := talib.Sma(prices, 20)
	for i := 19; i < len(prices); i++ {
		assert.InDelta(t, ref[i], ours[i], 1e-9, "index %d", i)
	}
	for i := 0; i < 19; i++ {
		assert.Equal(t, ours[19], ours[i], "left padding at %d", i)
	}
}

// wave builds a deterministic, non-monotonic price path.
func wave(n int) []float64 {
	out := make([]float64, n)
	price := 1.0850
	for i := range out {
		switch i % 7 {
		case 0, 3, 5:
			price += 0.0012
		case 1, 4:
			price -= 0.0015
		default:
			price += 0.0003
		}
		out[i] = price
	}
	return out
}
