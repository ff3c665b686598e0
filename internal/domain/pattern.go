package domain

// PatternKind tags the variant of a PatternEvent.
type PatternKind string

const (
	KindOrderBlock     PatternKind = "ORDER_BLOCK"
	KindFairValueGap   PatternKind = "FAIR_VALUE_GAP"
	KindLiquiditySweep PatternKind = "LIQUIDITY_SWEEP"
	KindBreakerBlock   PatternKind = "BREAKER_BLOCK"
)

// PatternEvent is implemented by every structural pattern a detector can emit.
// Events are values and are never modified after detection.
type PatternEvent interface {
	Kind() PatternKind
	Direction() Polarity
	BarIndex() int
}

// OrderBlock is the last opposing candle before an impulsive move.
type OrderBlock struct {
	Polarity Polarity `json:"polarity"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Index    int      `json:"index"`
	Tested   bool     `json:"tested"` // Always false: set once at detection, never revisited
}

func (o OrderBlock) Kind() PatternKind  { return KindOrderBlock }
func (o OrderBlock) Direction() Polarity { return o.Polarity }
func (o OrderBlock) BarIndex() int       { return o.Index }

// FairValueGap is a three-bar imbalance between bar 1 and bar 3.
type FairValueGap struct {
	Polarity Polarity `json:"polarity"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Index    int      `json:"index"` // Index of the third bar
	Filled   bool     `json:"filled"` // Always false: set once at detection, never revisited
}

func (f FairValueGap) Kind() PatternKind  { return KindFairValueGap }
func (f FairValueGap) Direction() Polarity { return f.Polarity }
func (f FairValueGap) BarIndex() int       { return f.Index }

// Contains reports whether price lies inside the gap, bounds included.
func (f FairValueGap) Contains(price float64) bool {
	return f.Low <= price && price <= f.High
}

// LiquiditySweep is a break of a prior swing level that closes back inside the range.
type LiquiditySweep struct {
	Polarity Polarity `json:"polarity"`
	Level    float64  `json:"level"`
	Index    int      `json:"index"`
}

func (l LiquiditySweep) Kind() PatternKind  { return KindLiquiditySweep }
func (l LiquiditySweep) Direction() Polarity { return l.Polarity }
func (l LiquiditySweep) BarIndex() int       { return l.Index }

// BreakerBlock is an order block that price later closed through.
// Polarity is the reversed bias: a failed bullish block yields a bearish breaker.
type BreakerBlock struct {
	Polarity Polarity `json:"polarity"`
	Level    float64  `json:"level"`
	Index    int      `json:"index"` // Index of the originating order block
}

func (b BreakerBlock) Kind() PatternKind  { return KindBreakerBlock }
func (b BreakerBlock) Direction() Polarity { return b.Polarity }
func (b BreakerBlock) BarIndex() int       { return b.Index }
