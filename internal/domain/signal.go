package domain

import "time"

// Evidence records which independent rules fired for a signal.
type Evidence struct {
	TrendCross     bool `json:"trend_cross"`     // EMA 9/21 crossover on the latest bar
	Momentum       bool `json:"momentum"`        // RSI beyond the oversold/overbought thresholds
	OrderBlock     bool `json:"order_block"`     // Price at the latest order block
	FairValueGap   bool `json:"fair_value_gap"`  // Price inside the latest fair value gap
	LiquiditySweep bool `json:"liquidity_sweep"` // A liquidity sweep has been detected
}

// Confluence counts the evidence flags that are set.
func (e Evidence) Confluence() int {
	count := 0
	for _, flag := range []bool{e.TrendCross, e.Momentum, e.OrderBlock, e.FairValueGap, e.LiquiditySweep} {
		if flag {
			count++
		}
	}
	return count
}

// Signal is an advisory trade recommendation produced by the synthesizer.
type Signal struct {
	Pair        string    `json:"pair"`
	Direction   Direction `json:"direction"`
	EntryPrice  float64   `json:"entry_price"`
	TakeProfit1 float64   `json:"take_profit_1"`
	TakeProfit2 float64   `json:"take_profit_2"`
	StopLoss    float64   `json:"stop_loss"`
	Strength    Strength  `json:"strength"`
	Analysis    string    `json:"analysis"`
	Timestamp   time.Time `json:"timestamp"`
	Evidence    Evidence  `json:"evidence"`
}

// Confluence returns the number of evidence flags behind the signal.
func (s *Signal) Confluence() int {
	return s.Evidence.Confluence()
}
