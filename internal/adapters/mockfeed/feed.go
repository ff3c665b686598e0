// Package mockfeed generates synthetic OHLC bars that stay inside a realistic
// price band for each supported pair.
package mockfeed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"
)

// PairProfile describes the price band and typical volatility of a pair.
type PairProfile struct {
	Low      float64 // Lower clip of the random walk
	High     float64 // Upper clip of the random walk
	ATRPips  float64 // Typical bar range in pips
	PipValue float64 // Price units per pip
}

// ATR returns the typical bar range in price units.
func (p PairProfile) ATR() float64 {
	return p.ATRPips * p.PipValue
}

var profiles = map[string]PairProfile{
	"EUR/USD": {1.0800, 1.1000, 15, 0.0001},
	"GBP/USD": {1.2500, 1.2800, 20, 0.0001},
	"USD/JPY": {148.00, 152.00, 15, 0.01},
	"AUD/USD": {0.6400, 0.6700, 12, 0.0001},
	"USD/CAD": {1.3500, 1.3800, 15, 0.0001},
	"EUR/GBP": {0.8550, 0.8750, 10, 0.0001},
	"GBP/JPY": {186.00, 194.00, 25, 0.01},
	"XAU/USD": {2300.00, 2400.00, 150, 0.1},
}

var fallbackProfile = PairProfile{1.0, 2.0, 10, 0.0001}

// Profile returns the profile for a pair, falling back to a generic band.
func Profile(pair string) PairProfile {
	if p, ok := profiles[pair]; ok {
		return p
	}
	return fallbackProfile
}

// Feed is a ports.BarSource backed by a Gaussian random walk.
type Feed struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger ports.Logger
	now    func() time.Time
}

var _ ports.BarSource = (*Feed)(nil)

// Config configures the synthetic feed.
type Config struct {
	Seed   int64 // Zero seeds from the clock
	Logger ports.Logger
	Now    func() time.Time
}

// New creates a synthetic feed with its own random source.
func New(cfg Config) (*Feed, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for mock feed")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now().UnixNano()
	}
	return &Feed{
		rng:    rand.New(rand.NewSource(seed)),
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// Name implements ports.BarSource.
func (f *Feed) Name() string {
	return "mock"
}

// GetBars generates limit bars ending at the current interval boundary.
func (f *Feed) GetBars(ctx context.Context, pair, interval string, limit int) ([]domain.Bar, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("mock GetBars failed: %w: limit must be positive, got %d", ports.ErrInvalidRequest, limit)
	}
	step, err := IntervalDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("mock GetBars failed: %w: %w", ports.ErrInvalidRequest, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mock GetBars failed: %w: %w", ports.ErrContextCanceled, err)
	}

	profile := Profile(pair)
	f.mu.Lock()
	bars := generate(f.rng, profile, limit)
	f.mu.Unlock()

	end := f.now().UTC().Truncate(step)
	start := end.Add(-time.Duration(limit) * step)
	for i := range bars {
		bars[i].OpenTime = start.Add(time.Duration(i) * step)
		bars[i].CloseTime = bars[i].OpenTime.Add(step - time.Millisecond)
		bars[i].Symbol = pair
		bars[i].Interval = interval
	}

	f.logger.Debug(ctx, "Generated mock bars", map[string]interface{}{
		"pair":  pair,
		"count": len(bars),
		"last":  bars[len(bars)-1].Close,
	})
	return bars, nil
}

// generate draws the walk first and the wick and close noise afterwards, one
// full series at a time.
func generate(rng *rand.Rand, p PairProfile, count int) []domain.Bar {
	atr := p.ATR()
	prices := make([]float64, count)
	prices[0] = (p.Low + p.High) / 2
	for i := 1; i < count; i++ {
		next := prices[i-1] + rng.NormFloat64()*(atr/3)
		prices[i] = math.Min(math.Max(next, p.Low), p.High)
	}

	bars := make([]domain.Bar, count)
	for i, price := range prices {
		bars[i].Open = price
		bars[i].High = price + math.Abs(rng.NormFloat64()*(atr/6))
	}
	for i, price := range prices {
		bars[i].Low = price - math.Abs(rng.NormFloat64()*(atr/6))
	}
	for i, price := range prices {
		bars[i].Close = price + rng.NormFloat64()*(atr/8)
	}

	for i := range bars {
		b := &bars[i]
		b.High = math.Max(b.High, math.Max(b.Open, b.Close))
		b.Low = math.Min(b.Low, math.Min(b.Open, b.Close))
	}
	return bars
}

// IntervalDuration parses exchange-style intervals such as "15m", "1h", "4h", "1d" and "1w".
func IntervalDuration(interval string) (time.Duration, error) {
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	unit := interval[len(interval)-1:]
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	var base time.Duration
	switch unit {
	case "m":
		base = time.Minute
	case "h":
		base = time.Hour
	case "d":
		base = 24 * time.Hour
	case "w":
		base = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid interval unit in %q", interval)
	}
	return time.Duration(n) * base, nil
}
