// Package patterns scans a bar sequence for structural price patterns:
// order blocks, fair value gaps, liquidity sweeps and breaker blocks.
//
// Every detector walks the whole sequence and returns its events in ascending
// bar-index order. Events are never merged or removed once emitted; callers
// that only care about the latest event take the last element.
package patterns

import "signalBot/internal/domain"

// Default detector parameters.
const (
	DefaultOrderBlockLookback = 10
	DefaultSweepLookback      = 10

	impulseBars       = 3   // bars summed after a candidate order block
	impulseFactor     = 1.5 // impulse must exceed this multiple of the block's range
	breakerConfirmBar = 5   // offset of the bar that must close through a block
)

// Set bundles the output of all four detectors for one bar sequence.
type Set struct {
	OrderBlocks     []domain.OrderBlock     `json:"order_blocks"`
	FairValueGaps   []domain.FairValueGap   `json:"fair_value_gaps"`
	LiquiditySweeps []domain.LiquiditySweep `json:"liquidity_sweeps"`
	BreakerBlocks   []domain.BreakerBlock   `json:"breaker_blocks"`
}

// Scan runs every detector with its default parameters.
func Scan(bars []domain.Bar) Set {
	blocks := OrderBlocks(bars, DefaultOrderBlockLookback)
	return Set{
		OrderBlocks:     blocks,
		FairValueGaps:   FairValueGaps(bars),
		LiquiditySweeps: LiquiditySweeps(bars, DefaultSweepLookback),
		BreakerBlocks:   breakersFrom(bars, blocks),
	}
}

// Events flattens the set into a single list ordered by bar index.
// Events on the same bar keep the order order blocks, gaps, sweeps, breakers.
func (s Set) Events() []domain.PatternEvent {
	events := make([]domain.PatternEvent, 0, len(s.OrderBlocks)+len(s.FairValueGaps)+len(s.LiquiditySweeps)+len(s.BreakerBlocks))
	for _, e := range s.OrderBlocks {
		events = append(events, e)
	}
	for _, e := range s.FairValueGaps {
		events = append(events, e)
	}
	for _, e := range s.LiquiditySweeps {
		events = append(events, e)
	}
	for _, e := range s.BreakerBlocks {
		events = append(events, e)
	}
	sortByIndex(events)
	return events
}

// LatestOrderBlock returns the most recent order block, if any.
func (s Set) LatestOrderBlock() (domain.OrderBlock, bool) {
	if len(s.OrderBlocks) == 0 {
		return domain.OrderBlock{}, false
	}
	return s.OrderBlocks[len(s.OrderBlocks)-1], true
}

// LatestFairValueGap returns the most recent fair value gap, if any.
func (s Set) LatestFairValueGap() (domain.FairValueGap, bool) {
	if len(s.FairValueGaps) == 0 {
		return domain.FairValueGap{}, false
	}
	return s.FairValueGaps[len(s.FairValueGaps)-1], true
}

// LatestLiquiditySweep returns the most recent liquidity sweep, if any.
func (s Set) LatestLiquiditySweep() (domain.LiquiditySweep, bool) {
	if len(s.LiquiditySweeps) == 0 {
		return domain.LiquiditySweep{}, false
	}
	return s.LiquiditySweeps[len(s.LiquiditySweeps)-1], true
}

// sortByIndex is a stable insertion sort; the inputs are four already sorted runs.
func sortByIndex(events []domain.PatternEvent) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].BarIndex() < events[j-1].BarIndex(); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}
