package strategy

import (
	"fmt"

	"signalBot/internal/domain"
	"signalBot/internal/strategy/indicators"
	"signalBot/internal/strategy/patterns"
)

// market is the read-only input every evidence rule sees.
type market struct {
	price    float64
	fastEMA  []float64
	slowEMA  []float64
	rsi      float64
	patterns patterns.Set
}

// verdict is the outcome of one evidence rule.
type verdict struct {
	triggered bool
	proposal  domain.Direction
	note      string
}

// evidenceRule is one independent source of evidence. mark records the rule's
// flag on the evidence set.
type evidenceRule struct {
	evaluate func(m market) verdict
	mark     func(e *domain.Evidence)
}

// evidenceRules in precedence order.
var evidenceRules = []evidenceRule{
	{evaluate: trendCross, mark: func(e *domain.Evidence) { e.TrendCross = true }},
	{evaluate: momentum, mark: func(e *domain.Evidence) { e.Momentum = true }},
	{evaluate: orderBlock, mark: func(e *domain.Evidence) { e.OrderBlock = true }},
	{evaluate: fairValueGap, mark: func(e *domain.Evidence) { e.FairValueGap = true }},
	{evaluate: liquiditySweep, mark: func(e *domain.Evidence) { e.LiquiditySweep = true }},
}

// fold applies rules left to right. A triggered rule always sets its flag and
// note; it sets the direction only while the direction is still HOLD, so the
// first triggered rule decides and later rules never flip it.
func fold(m market, rules []evidenceRule) (domain.Direction, domain.Evidence, []string) {
	direction := domain.Hold
	var evidence domain.Evidence
	notes := []string{}

	for _, r := range rules {
		v := r.evaluate(m)
		if !v.triggered {
			continue
		}
		r.mark(&evidence)
		notes = append(notes, v.note)
		if direction == domain.Hold {
			direction = v.proposal
		}
	}
	return direction, evidence, notes
}

// trendCross fires when EMA 9 crossed EMA 21 between the last two bars.
func trendCross(m market) verdict {
	f, s := m.fastEMA, m.slowEMA
	if len(f) < 2 || len(s) < 2 {
		return verdict{}
	}
	prevFast, prevSlow := f[len(f)-2], s[len(s)-2]
	fast, slow := f[len(f)-1], s[len(s)-1]

	switch {
	case prevFast < prevSlow && fast > slow:
		return verdict{triggered: true, proposal: domain.Buy, note: "EMA 9/21 bullish crossover detected"}
	case prevFast > prevSlow && fast < slow:
		return verdict{triggered: true, proposal: domain.Sell, note: "EMA 9/21 bearish crossover detected"}
	}
	return verdict{}
}

func momentum(m market) verdict {
	switch {
	case m.rsi < indicators.RSIOversold:
		return verdict{triggered: true, proposal: domain.Buy, note: fmt.Sprintf("RSI oversold (%.1f)", m.rsi)}
	case m.rsi > indicators.RSIOverbought:
		return verdict{triggered: true, proposal: domain.Sell, note: fmt.Sprintf("RSI overbought (%.1f)", m.rsi)}
	}
	return verdict{}
}

// orderBlock fires when price trades at or into the latest order block.
func orderBlock(m market) verdict {
	ob, ok := m.patterns.LatestOrderBlock()
	if !ok {
		return verdict{}
	}
	switch {
	case ob.Polarity == domain.Bullish && m.price <= ob.High:
		return verdict{triggered: true, proposal: ob.Polarity.Direction(), note: "Bullish order block identified"}
	case ob.Polarity == domain.Bearish && m.price >= ob.Low:
		return verdict{triggered: true, proposal: ob.Polarity.Direction(), note: "Bearish order block identified"}
	}
	return verdict{}
}

func fairValueGap(m market) verdict {
	gap, ok := m.patterns.LatestFairValueGap()
	if !ok || !gap.Contains(m.price) {
		return verdict{}
	}
	note := "Price within bearish FVG zone"
	if gap.Polarity == domain.Bullish {
		note = "Price within bullish FVG zone"
	}
	return verdict{triggered: true, proposal: gap.Polarity.Direction(), note: note}
}

// liquiditySweep fires on the latest sweep regardless of its age.
func liquiditySweep(m market) verdict {
	sweep, ok := m.patterns.LatestLiquiditySweep()
	if !ok {
		return verdict{}
	}
	note := "Bearish liquidity sweep detected"
	if sweep.Polarity == domain.Bullish {
		note = "Bullish liquidity sweep detected"
	}
	return verdict{triggered: true, proposal: sweep.Polarity.Direction(), note: note}
}
