package patterns

import "signalBot/internal/domain"

// LiquiditySweeps finds bars that trade through the swing low (high) of the
// previous lookback bars and close back above (below) it. A bar that sweeps
// both sides is reported as a bullish sweep.
// Returns nil when fewer than lookback+2 bars are given.
func LiquiditySweeps(bars []domain.Bar, lookback int) []domain.LiquiditySweep {
	if lookback <= 0 || len(bars) < lookback+2 {
		return nil
	}

	var sweeps []domain.LiquiditySweep
	for i := lookback; i < len(bars); i++ {
		swingHigh, swingLow := swingRange(bars[i-lookback : i])
		current := bars[i]

		if current.Low < swingLow && current.Close > swingLow {
			sweeps = append(sweeps, domain.LiquiditySweep{Polarity: domain.Bullish, Level: swingLow, Index: i})
		} else if current.High > swingHigh && current.Close < swingHigh {
			sweeps = append(sweeps, domain.LiquiditySweep{Polarity: domain.Bearish, Level: swingHigh, Index: i})
		}
	}
	return sweeps
}

// swingRange returns the highest high and lowest low of window.
func swingRange(window []domain.Bar) (high, low float64) {
	high, low = window[0].High, window[0].Low
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
