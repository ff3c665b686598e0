// Package report renders signals and signal statistics as Telegram HTML text.
//
// All functions are pure: the same input always yields the same string.
package report

import (
	"fmt"
	"strings"

	"signalBot/internal/domain"
)

// DefaultBrand signs every report when no brand is configured.
const DefaultBrand = "HAMCODZ Trading"

// PipMultiplier converts a price difference on pair into pips.
// JPY pairs use 100, gold (XAU) uses 10 and everything else 10000.
func PipMultiplier(pair string) float64 {
	switch {
	case strings.Contains(pair, "JPY"):
		return 100
	case strings.Contains(pair, "XAU"):
		return 10
	default:
		return 10000
	}
}

// PriceDecimals is the number of fractional digits prices on pair are shown with.
func PriceDecimals(pair string) int {
	if strings.Contains(pair, "JPY") || strings.Contains(pair, "XAU") {
		return 2
	}
	return 5
}

// Pips holds the distance from entry to each level, positive in the
// favourable direction for targets and in the adverse direction for the stop.
type Pips struct {
	TakeProfit1 float64
	TakeProfit2 float64
	StopLoss    float64
}

// PipDistances measures the levels of sig in pips.
func PipDistances(sig *domain.Signal) Pips {
	mult := PipMultiplier(sig.Pair)
	if sig.Direction == domain.Buy {
		return Pips{
			TakeProfit1: (sig.TakeProfit1 - sig.EntryPrice) * mult,
			TakeProfit2: (sig.TakeProfit2 - sig.EntryPrice) * mult,
			StopLoss:    (sig.EntryPrice - sig.StopLoss) * mult,
		}
	}
	return Pips{
		TakeProfit1: (sig.EntryPrice - sig.TakeProfit1) * mult,
		TakeProfit2: (sig.EntryPrice - sig.TakeProfit2) * mult,
		StopLoss:    (sig.StopLoss - sig.EntryPrice) * mult,
	}
}

// Formatter renders reports signed with Brand.
type Formatter struct {
	Brand string
}

// NewFormatter returns a Formatter, falling back to DefaultBrand.
func NewFormatter(brand string) Formatter {
	if brand == "" {
		brand = DefaultBrand
	}
	return Formatter{Brand: brand}
}

func (f Formatter) brand() string {
	if f.Brand == "" {
		return DefaultBrand
	}
	return f.Brand
}

var strengthBadges = map[domain.Strength]string{
	domain.StrengthStrong:   "💪💪💪",
	domain.StrengthModerate: "💪💪",
	domain.StrengthWeak:     "💪",
}

// Format renders sig with the signal template.
func (f Formatter) Format(sig *domain.Signal) string {
	emoji := "🔴"
	if sig.Direction == domain.Buy {
		emoji = "🟢"
	}
	decimals := PriceDecimals(sig.Pair)
	pips := PipDistances(sig)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s SIGNAL - %s</b> %s\n\n", emoji, sig.Pair, sig.Direction, emoji)
	fmt.Fprintf(&b, "📊 <b>Entry:</b> %.*f\n", decimals, sig.EntryPrice)
	fmt.Fprintf(&b, "🎯 <b>TP1:</b> %.*f (+%.0f pips)\n", decimals, sig.TakeProfit1, pips.TakeProfit1)
	fmt.Fprintf(&b, "🎯 <b>TP2:</b> %.*f (+%.0f pips)\n", decimals, sig.TakeProfit2, pips.TakeProfit2)
	fmt.Fprintf(&b, "🛑 <b>SL:</b> %.*f (-%.0f pips)\n\n", decimals, sig.StopLoss, pips.StopLoss)
	fmt.Fprintf(&b, "📝 <b>Analysis:</b>\n%s\n\n", sig.Analysis)
	fmt.Fprintf(&b, "⏰ <b>Time:</b> %s UTC\n", sig.Timestamp.UTC().Format("15:04"))
	fmt.Fprintf(&b, "📊 <b>Strength:</b> %s\n", strengthBadges[sig.Strength])
	b.WriteString("📉 <b>Risk:</b> 1-2% recommended\n\n")
	fmt.Fprintf(&b, "<i>Signal by %s</i>", f.brand())

	return strings.TrimSpace(b.String())
}
