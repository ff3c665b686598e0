package patterns

import "signalBot/internal/domain"

// FairValueGaps finds three-bar imbalances. With c1, c2, c3 the bars at i-2,
// i-1 and i: a bullish gap spans [c1.High, c3.Low] when c1.High < c3.Low and
// c2 closed up; a bearish gap spans [c3.High, c1.Low] when c1.Low > c3.High and
// c2 closed down. The event index is that of c3.
func FairValueGaps(bars []domain.Bar) []domain.FairValueGap {
	if len(bars) < 3 {
		return nil
	}

	var gaps []domain.FairValueGap
	for i := 2; i < len(bars); i++ {
		c1, c2, c3 := bars[i-2], bars[i-1], bars[i]

		if c1.High < c3.Low && c2.IsBullish() {
			gaps = append(gaps, domain.FairValueGap{Polarity: domain.Bullish, High: c3.Low, Low: c1.High, Index: i})
		} else if c1.Low > c3.High && c2.IsBearish() {
			gaps = append(gaps, domain.FairValueGap{Polarity: domain.Bearish, High: c1.Low, Low: c3.High, Index: i})
		}
	}
	return gaps
}
