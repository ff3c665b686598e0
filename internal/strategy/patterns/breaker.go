package patterns

import "signalBot/internal/domain"

// BreakerBlocks finds order blocks that failed: the close five bars after a
// bullish block below its low yields a bearish breaker at the low, the close
// five bars after a bearish block above its high yields a bullish breaker at
// the high. Blocks too close to the end of the sequence are skipped.
func BreakerBlocks(bars []domain.Bar) []domain.BreakerBlock {
	return breakersFrom(bars, OrderBlocks(bars, DefaultOrderBlockLookback))
}

func breakersFrom(bars []domain.Bar, blocks []domain.OrderBlock) []domain.BreakerBlock {
	var breakers []domain.BreakerBlock
	for _, ob := range blocks {
		confirm := ob.Index + breakerConfirmBar
		if confirm >= len(bars) {
			continue
		}

		closePrice := bars[confirm].Close
		if ob.Polarity == domain.Bullish {
			if closePrice < ob.Low {
				breakers = append(breakers, domain.BreakerBlock{Polarity: domain.Bearish, Level: ob.Low, Index: ob.Index})
			}
		} else if closePrice > ob.High {
			breakers = append(breakers, domain.BreakerBlock{Polarity: domain.Bullish, Level: ob.High, Index: ob.Index})
		}
	}
	return breakers
}
