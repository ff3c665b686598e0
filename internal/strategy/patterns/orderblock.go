package patterns

import "signalBot/internal/domain"

// OrderBlocks finds the last opposing candle before an impulsive move.
//
// For every bar i in [lookback, len-3) the signed bodies of the next (up to)
// three bars are summed. A bearish bar followed by an impulse above 1.5 times
// its range is a bullish block; a bullish bar followed by an impulse below
// -1.5 times its range is a bearish block. Doji bars never qualify.
// Returns nil when fewer than lookback+5 bars are given.
func OrderBlocks(bars []domain.Bar, lookback int) []domain.OrderBlock {
	if lookback < 0 || len(bars) < lookback+5 {
		return nil
	}

	var blocks []domain.OrderBlock
	for i := lookback; i < len(bars)-impulseBars; i++ {
		bar := bars[i]
		threshold := bar.Range() * impulseFactor

		switch {
		case bar.IsBearish():
			if impulse(bars, i) > threshold {
				blocks = append(blocks, domain.OrderBlock{Polarity: domain.Bullish, High: bar.High, Low: bar.Low, Index: i})
			}
		case bar.IsBullish():
			if impulse(bars, i) < -threshold {
				blocks = append(blocks, domain.OrderBlock{Polarity: domain.Bearish, High: bar.High, Low: bar.Low, Index: i})
			}
		}
	}
	return blocks
}

// impulse sums close-open over the bars following i.
func impulse(bars []domain.Bar, i int) float64 {
	end := i + 1 + impulseBars
	if end > len(bars) {
		end = len(bars)
	}
	move := 0.0
	for _, b := range bars[i+1 : end] {
		move += b.Body()
	}
	return move
}
