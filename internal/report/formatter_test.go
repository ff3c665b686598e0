package report

import (
	"strings"
	"testing"
	"time"

	"signalBot/internal/domain"

	"github.com/stretchr/testify/assert"
)

var reportTime = time.Date(2024, 3, 15, 15, 7, 0, 0, time.FixedZone("CET", 3600))

func TestPipMultiplier(t *testing.T) {
	tests := []struct {
		pair     string
		mult     float64
		decimals int
	}{
		{"USD/JPY", 100, 2},
		{"GBP/JPY", 100, 2},
		{"XAU/USD", 10, 2},
		{"XAU/JPY", 100, 2}, // JPY is checked first
		{"EUR/USD", 10000, 5},
		{"BTC/USDT", 10000, 5},
	}
	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			assert.Equal(t, tt.mult, PipMultiplier(tt.pair))
			assert.Equal(t, tt.decimals, PriceDecimals(tt.pair))
		})
	}
}

func TestFormat_EURUSD(t *testing.T) {
	sig := &domain.Signal{
		Pair:        "EUR/USD",
		Direction:   domain.Buy,
		EntryPrice:  1.08512,
		TakeProfit1: 1.08812,
		TakeProfit2: 1.08962,
		StopLoss:    1.08312,
		Strength:    domain.StrengthModerate,
		Analysis:    "EMA 9/21 bullish crossover detected | RSI oversold (25.0)",
		Timestamp:   reportTime,
	}

	expected := strings.Join([]string{
		"🟢 <b>EUR/USD SIGNAL - BUY</b> 🟢",
		"",
		"📊 <b>Entry:</b> 1.08512",
		"🎯 <b>TP1:</b> 1.08812 (+30 pips)",
		"🎯 <b>TP2:</b> 1.08962 (+45 pips)",
		"🛑 <b>SL:</b> 1.08312 (-20 pips)",
		"",
		"📝 <b>Analysis:</b>",
		"EMA 9/21 bullish crossover detected | RSI oversold (25.0)",
		"",
		"⏰ <b>Time:</b> 14:07 UTC",
		"📊 <b>Strength:</b> 💪💪",
		"📉 <b>Risk:</b> 1-2% recommended",
		"",
		"<i>Signal by HAMCODZ Trading</i>",
	}, "\n")

	assert.Equal(t, expected, NewFormatter("").Format(sig))
}

func TestFormat_USDJPY(t *testing.T) {
	sig := &domain.Signal{
		Pair:        "USD/JPY",
		Direction:   domain.Buy,
		EntryPrice:  150.123,
		TakeProfit1: 150.5,
		TakeProfit2: 151.0,
		StopLoss:    149.5,
		Strength:    domain.StrengthWeak,
		Analysis:    "Bullish liquidity sweep detected",
		Timestamp:   reportTime,
	}

	out := NewFormatter("").Format(sig)
	assert.Contains(t, out, "📊 <b>Entry:</b> 150.12\n")
	assert.Contains(t, out, "🎯 <b>TP1:</b> 150.50 (+38 pips)\n")
	assert.Contains(t, out, "🎯 <b>TP2:</b> 151.00 (+88 pips)\n")
	assert.Contains(t, out, "🛑 <b>SL:</b> 149.50 (-62 pips)\n")
	assert.Contains(t, out, "📊 <b>Strength:</b> 💪\n")
}

func TestFormat_XAUUSD(t *testing.T) {
	sig := &domain.Signal{
		Pair:        "XAU/USD",
		Direction:   domain.Sell,
		EntryPrice:  2350.55,
		TakeProfit1: 2340.55,
		TakeProfit2: 2335.55,
		StopLoss:    2357.25,
		Strength:    domain.StrengthStrong,
		Analysis:    "Bearish order block identified",
		Timestamp:   reportTime,
	}

	out := NewFormatter("Gold Desk").Format(sig)
	assert.True(t, strings.HasPrefix(out, "🔴 <b>XAU/USD SIGNAL - SELL</b> 🔴\n"))
	assert.Contains(t, out, "📊 <b>Entry:</b> 2350.55\n")
	assert.Contains(t, out, "🎯 <b>TP1:</b> 2340.55 (+100 pips)\n")
	assert.Contains(t, out, "🎯 <b>TP2:</b> 2335.55 (+150 pips)\n")
	assert.Contains(t, out, "🛑 <b>SL:</b> 2357.25 (-67 pips)\n")
	assert.Contains(t, out, "📊 <b>Strength:</b> 💪💪💪\n")
	assert.True(t, strings.HasSuffix(out, "<i>Signal by Gold Desk</i>"))
}

func TestFormat_Deterministic(t *testing.T) {
	sig := &domain.Signal{Pair: "GBP/USD", Direction: domain.Sell, EntryPrice: 1.27, TakeProfit1: 1.265, TakeProfit2: 1.2625, StopLoss: 1.2733, Strength: domain.StrengthWeak, Analysis: "x", Timestamp: reportTime}
	f := NewFormatter("")
	assert.Equal(t, f.Format(sig), f.Format(sig))
	assert.Equal(t, f.Format(sig), Formatter{}.Format(sig))
}

func TestPipDistances(t *testing.T) {
	buy := PipDistances(&domain.Signal{Pair: "EUR/USD", Direction: domain.Buy, EntryPrice: 1.1, TakeProfit1: 1.103, TakeProfit2: 1.1045, StopLoss: 1.098})
	assert.InDelta(t, 30, buy.TakeProfit1, 1e-6)
	assert.InDelta(t, 45, buy.TakeProfit2, 1e-6)
	assert.InDelta(t, 20, buy.StopLoss, 1e-6)

	sell := PipDistances(&domain.Signal{Pair: "GBP/JPY", Direction: domain.Sell, EntryPrice: 190, TakeProfit1: 189.7, TakeProfit2: 189.55, StopLoss: 190.2})
	assert.InDelta(t, 30, sell.TakeProfit1, 1e-6)
	assert.InDelta(t, 45, sell.TakeProfit2, 1e-6)
	assert.InDelta(t, 20, sell.StopLoss, 1e-6)
}
