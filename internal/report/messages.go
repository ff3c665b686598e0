package report

import (
	"fmt"
	"strings"

	"signalBot/internal/strategy/analytics"
)

// Alert kinds understood by FormatMarketAlert.
const (
	AlertNews       = "NEWS"
	AlertVolatility = "VOLATILITY"
	AlertWarning    = "WARNING"
	AlertInfo       = "INFO"
)

var alertEmoji = map[string]string{
	AlertNews:       "📰",
	AlertVolatility: "⚠️",
	AlertWarning:    "🚨",
	AlertInfo:       "ℹ️",
}

// FormatDailySummary renders the signal activity of the last day.
func (f Formatter) FormatDailySummary(stats *analytics.SignalStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>DAILY SIGNAL SUMMARY</b>\n\n")
	fmt.Fprintf(&b, "🎯 <b>Signals Today:</b> %d\n", stats.TotalSignals)
	fmt.Fprintf(&b, "🟢 <b>Buy:</b> %d\n", stats.BuySignals)
	fmt.Fprintf(&b, "🔴 <b>Sell:</b> %d\n\n", stats.SellSignals)
	fmt.Fprintf(&b, "💪💪💪 <b>Strong:</b> %d\n", stats.StrongSignals)
	fmt.Fprintf(&b, "💪💪 <b>Moderate:</b> %d\n", stats.ModerateSignals)
	fmt.Fprintf(&b, "💪 <b>Weak:</b> %d\n\n", stats.WeakSignals)
	if pair, count, ok := stats.MostActivePair(); ok {
		fmt.Fprintf(&b, "📈 <b>Most Active:</b> %s (%d)\n", pair, count)
		fmt.Fprintf(&b, "🧩 <b>Avg Confluence:</b> %.1f\n\n", stats.AverageConfluence)
	}
	b.WriteString("<i>Keep following for more signals!</i>")
	return b.String()
}

// FormatMarketAlert renders a free-text alert. Unknown kinds get a generic badge.
func (f Formatter) FormatMarketAlert(kind, message string) string {
	emoji, ok := alertEmoji[kind]
	if !ok {
		emoji = "📢"
	}
	text := fmt.Sprintf("%s <b>%s ALERT</b>\n\n%s\n\n<i>Stay safe and trade smart!</i>", emoji, kind, message)
	return strings.TrimSpace(text)
}

// FormatWelcome renders the channel introduction message.
func (f Formatter) FormatWelcome() string {
	return fmt.Sprintf(`🚀 <b>%s Signals</b>

Welcome to our trading signal channel!

📊 We provide:
• ICT-based analysis
• Real-time forex signals
• Clear entry, TP, and SL levels
• Transparent track record

<i>Signals will be posted automatically when opportunities arise.</i>`, f.brand())
}
