package strategy

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"
	"signalBot/internal/strategy/indicators"
	"signalBot/internal/strategy/patterns"
)

const (
	// RequiredBars is the shortest history the synthesizer will analyse.
	RequiredBars = 50

	fastEMAPeriod  = 9
	slowEMAPeriod  = 21
	trendEMAPeriod = 50

	neutralRSI  = 50.0  // used when RSI cannot be computed
	fallbackATR = 0.001 // used when ATR cannot be computed

	stopATRMultiple = 2.0
	tp1ATRMultiple  = 2.0
	tp2ATRMultiple  = 3.0

	priceDecimals = 5

	noteSeparator = " | "
)

// Config holds parameters for the signal synthesizer.
type Config struct {
	RiskReward float64          // Take-profit distance as a multiple of the stop distance, e.g. 1.5
	MinRR      float64          // Lowest acceptable RiskReward, e.g. 1.5
	Now        func() time.Time // Clock used to stamp signals; time.Now when nil
}

// DefaultConfig returns the stock 1.5 risk/reward configuration.
func DefaultConfig() Config {
	return Config{RiskReward: 1.5, MinRR: 1.5}
}

// Strategy fuses indicators and price patterns into trade signals.
type Strategy struct {
	cfg    Config
	logger ports.Logger
}

var _ ports.Analyzer = (*Strategy)(nil)

// New creates a new Strategy instance.
func New(cfg Config, logger ports.Logger) (*Strategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.RiskReward <= 0 {
		return nil, fmt.Errorf("%w: risk/reward must be positive, got %v", ports.ErrConfigurationError, cfg.RiskReward)
	}
	if cfg.MinRR < 0 {
		return nil, fmt.Errorf("%w: minimum risk/reward must not be negative, got %v", ports.ErrConfigurationError, cfg.MinRR)
	}
	if cfg.RiskReward < cfg.MinRR {
		return nil, fmt.Errorf("%w: risk/reward %v is below the minimum %v", ports.ErrConfigurationError, cfg.RiskReward, cfg.MinRR)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Strategy{cfg: cfg, logger: logger}, nil
}

// RequiredDataPoints returns the minimum number of bars needed for analysis.
func (s *Strategy) RequiredDataPoints() int {
	return RequiredBars
}

// Assessment is the full intermediate state of one analysis pass.
type Assessment struct {
	Price       float64          `json:"price"`
	FastEMA     float64          `json:"ema_9"`
	SlowEMA     float64          `json:"ema_21"`
	TrendEMA    float64          `json:"ema_50"` // informational only
	RSI         float64          `json:"rsi"`
	ATR         float64          `json:"atr"`
	Supports    []float64        `json:"supports"`
	Resistances []float64        `json:"resistances"`
	Patterns    patterns.Set     `json:"patterns"`
	Direction   domain.Direction `json:"direction"`
	Evidence    domain.Evidence  `json:"evidence"`
	Notes       []string         `json:"notes"`
}

// Assess computes every indicator and pattern for bars and folds the evidence
// rules. It works on any length; Analyze enforces the minimum history.
func (s *Strategy) Assess(bars []domain.Bar) Assessment {
	closes := indicators.Closes(bars)
	highs := indicators.Highs(bars)
	lows := indicators.Lows(bars)

	fast := indicators.EMA(closes, fastEMAPeriod)
	slow := indicators.EMA(closes, slowEMAPeriod)
	trend := indicators.EMA(closes, trendEMAPeriod)

	rsi, ok := indicators.Last(indicators.RSI(closes, indicators.DefaultRSIPeriod))
	if !ok {
		rsi = neutralRSI
	}
	atr, ok := indicators.Last(indicators.ATR(highs, lows, closes, indicators.DefaultATRPeriod))
	if !ok {
		atr = fallbackATR
	}

	m := market{
		fastEMA:  fast,
		slowEMA:  slow,
		rsi:      rsi,
		patterns: patterns.Scan(bars),
	}
	m.price, _ = indicators.Last(closes)

	a := Assessment{
		Price:    m.price,
		RSI:      rsi,
		ATR:      atr,
		Patterns: m.patterns,
	}
	a.FastEMA, _ = indicators.Last(fast)
	a.SlowEMA, _ = indicators.Last(slow)
	a.TrendEMA, _ = indicators.Last(trend)
	a.Supports, a.Resistances = indicators.SupportResistance(closes, indicators.DefaultLevelsWindow)
	a.Direction, a.Evidence, a.Notes = fold(m, evidenceRules)
	return a
}

// Analyze returns a signal for pair, or nil when there is not enough history
// or no rule points to a direction.
func (s *Strategy) Analyze(ctx context.Context, pair string, bars []domain.Bar) *domain.Signal {
	if len(bars) < RequiredBars {
		s.logger.Debug(ctx, "Not enough bars for signal synthesis",
			map[string]interface{}{"pair": pair, "available": len(bars), "required": RequiredBars})
		return nil
	}

	a := s.Assess(bars)
	s.logger.Debug(ctx, "Assessment complete", map[string]interface{}{
		"pair":       pair,
		"price":      a.Price,
		"ema9":       a.FastEMA,
		"ema21":      a.SlowEMA,
		"rsi":        a.RSI,
		"atr":        a.ATR,
		"direction":  a.Direction,
		"confluence": a.Evidence.Confluence(),
	})

	if a.Direction == domain.Hold {
		return nil
	}

	levels := computeLevels(a.Direction, a.Price, a.ATR, s.cfg.RiskReward)
	return &domain.Signal{
		Pair:        pair,
		Direction:   a.Direction,
		EntryPrice:  roundPrice(levels.entry),
		TakeProfit1: roundPrice(levels.tp1),
		TakeProfit2: roundPrice(levels.tp2),
		StopLoss:    roundPrice(levels.stop),
		Strength:    domain.StrengthFromConfluence(a.Evidence.Confluence()),
		Analysis:    strings.Join(a.Notes, noteSeparator),
		Timestamp:   s.cfg.Now().UTC(),
		Evidence:    a.Evidence,
	}
}

type priceLevels struct {
	entry, stop, tp1, tp2 float64
}

// computeLevels places the stop two ATRs away and the targets at two and three
// ATRs scaled by riskReward. The float64 conversions keep every product rounded
// on its own so results do not depend on FMA availability.
func computeLevels(dir domain.Direction, price, atr, riskReward float64) priceLevels {
	stopDist := float64(atr * stopATRMultiple)
	tp1Dist := float64(float64(atr*tp1ATRMultiple) * riskReward)
	tp2Dist := float64(float64(atr*tp2ATRMultiple) * riskReward)

	if dir == domain.Sell {
		return priceLevels{entry: price, stop: price + stopDist, tp1: price - tp1Dist, tp2: price - tp2Dist}
	}
	return priceLevels{entry: price, stop: price - stopDist, tp1: price + tp1Dist, tp2: price + tp2Dist}
}

// roundPrice rounds the exact binary value of v to 5 decimals, halves to even.
func roundPrice(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', priceDecimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
