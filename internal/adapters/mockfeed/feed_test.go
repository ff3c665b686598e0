package mockfeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"signalBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var feedNow = time.Date(2024, 3, 15, 14, 42, 0, 0, time.UTC)

func newTestFeed(t *testing.T, seed int64) *Feed {
	t.Helper()
	f, err := New(Config{Seed: seed, Logger: nopLogger{}, Now: func() time.Time { return feedNow }})
	require.NoError(t, err)
	return f
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{Seed: 1})
	assert.Error(t, err)
}

func TestGetBars_ShapeAndTimes(t *testing.T) {
	f := newTestFeed(t, 42)
	bars, err := f.GetBars(context.Background(), "EUR/USD", "1h", 100)
	require.NoError(t, err)
	require.Len(t, bars, 100)

	assert.Equal(t, time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC), bars[99].OpenTime)
	assert.Equal(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC), bars[0].OpenTime)
	for i, b := range bars {
		assert.Equal(t, "EUR/USD", b.Symbol)
		assert.Equal(t, "1h", b.Interval)
		if i > 0 {
			assert.Equal(t, time.Hour, b.OpenTime.Sub(bars[i-1].OpenTime))
		}
	}
	assert.InDelta(t, 1.09, bars[0].Open, 1e-12, "walk starts at the band midpoint")
}

func TestGetBars_EnvelopeAndBand(t *testing.T) {
	pairs := []string{"NZD/CHF"}
	for pair := range profiles {
		pairs = append(pairs, pair)
	}
	for _, pair := range pairs {
		t.Run(pair, func(t *testing.T) {
			f := newTestFeed(t, 7)
			p := Profile(pair)
			bars, err := f.GetBars(context.Background(), pair, "15m", 300)
			require.NoError(t, err)
			for i, b := range bars {
				assert.GreaterOrEqual(t, b.Open, p.Low, "bar %d open below band", i)
				assert.LessOrEqual(t, b.Open, p.High, "bar %d open above band", i)
				assert.GreaterOrEqual(t, b.High, b.Open)
				assert.GreaterOrEqual(t, b.High, b.Close)
				assert.LessOrEqual(t, b.Low, b.Open)
				assert.LessOrEqual(t, b.Low, b.Close)
			}
		})
	}
}

func TestGetBars_SeedIsReproducible(t *testing.T) {
	a, err := newTestFeed(t, 99).GetBars(context.Background(), "XAU/USD", "1h", 60)
	require.NoError(t, err)
	b, err := newTestFeed(t, 99).GetBars(context.Background(), "XAU/USD", "1h", 60)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := newTestFeed(t, 100).GetBars(context.Background(), "XAU/USD", "1h", 60)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGetBars_InvalidRequests(t *testing.T) {
	f := newTestFeed(t, 1)
	tests := []struct {
		name     string
		interval string
		limit    int
	}{
		{"zero limit", "1h", 0},
		{"negative limit", "1h", -5},
		{"bad interval", "hourly", 10},
		{"bad unit", "1x", 10},
		{"zero interval", "0h", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.GetBars(context.Background(), "EUR/USD", tt.interval, tt.limit)
			assert.True(t, errors.Is(err, ports.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestGetBars_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFeed(t, 1).GetBars(ctx, "EUR/USD", "1h", 10)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1m", time.Minute},
		{"15m", 15 * time.Minute},
		{"4h", 4 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := IntervalDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestProfile(t *testing.T) {
	assert.InDelta(t, 0.0015, Profile("EUR/USD").ATR(), 1e-12)
	assert.InDelta(t, 15.0, Profile("XAU/USD").ATR(), 1e-9)
	assert.Equal(t, fallbackProfile, Profile("UNKNOWN"))
}
