package analytics

import (
	"math"
	"sort"
	"time"

	"signalBot/internal/domain"
)

// SignalStats holds descriptive statistics over a signal history.
// Signals are advisory only, so there are no win/loss figures here.
type SignalStats struct {
	// Basic Metrics
	TotalSignals    int
	BuySignals      int
	SellSignals     int
	StrongSignals   int
	ModerateSignals int
	WeakSignals     int
	FirstSignal     time.Time
	LastSignal      time.Time

	// Advanced Metrics
	AverageConfluence    float64
	AverageRewardToRisk  float64 // mean of |tp1-entry| / |entry-sl| over signals with a non-zero stop
	MaxDirectionStreak   int     // longest run of consecutive same-direction signals
	SignalsByPair        map[string]int
	DailyCounts          map[string]int
	AverageSignalSpacing time.Duration
}

// AnalyzeSignals calculates statistics from signals. The input slice is not
// modified; signals are processed in timestamp order.
func AnalyzeSignals(signals []*domain.Signal) *SignalStats {
	stats := &SignalStats{
		SignalsByPair: make(map[string]int),
		DailyCounts:   make(map[string]int),
	}

	if len(signals) == 0 {
		return stats
	}

	ordered := make([]*domain.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig != nil {
			ordered = append(ordered, sig)
		}
	}
	if len(ordered) == 0 {
		return stats
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var totalConfluence int
	var totalRR float64
	var rrCount int
	var streak, maxStreak int
	var prevDirection domain.Direction

	for _, sig := range ordered {
		stats.TotalSignals++
		switch sig.Direction {
		case domain.Buy:
			stats.BuySignals++
		case domain.Sell:
			stats.SellSignals++
		}
		switch sig.Strength {
		case domain.StrengthStrong:
			stats.StrongSignals++
		case domain.StrengthModerate:
			stats.ModerateSignals++
		default:
			stats.WeakSignals++
		}

		stats.SignalsByPair[sig.Pair]++
		stats.DailyCounts[sig.Timestamp.UTC().Format("2006-01-02")]++
		totalConfluence += sig.Confluence()

		if risk := math.Abs(sig.EntryPrice - sig.StopLoss); risk > 0 {
			totalRR += math.Abs(sig.TakeProfit1-sig.EntryPrice) / risk
			rrCount++
		}

		if sig.Direction == prevDirection {
			streak++
		} else {
			streak = 1
			prevDirection = sig.Direction
		}
		if streak > maxStreak {
			maxStreak = streak
		}
	}

	stats.FirstSignal = ordered[0].Timestamp
	stats.LastSignal = ordered[len(ordered)-1].Timestamp
	stats.MaxDirectionStreak = maxStreak
	stats.AverageConfluence = float64(totalConfluence) / float64(stats.TotalSignals)
	if rrCount > 0 {
		stats.AverageRewardToRisk = totalRR / float64(rrCount)
	}
	if stats.TotalSignals > 1 {
		stats.AverageSignalSpacing = stats.LastSignal.Sub(stats.FirstSignal) / time.Duration(stats.TotalSignals-1)
	}

	return stats
}

// MostActivePair returns the pair with the most signals. Ties go to the
// alphabetically first pair. ok is false for an empty history.
func (s *SignalStats) MostActivePair() (pair string, count int, ok bool) {
	for p, n := range s.SignalsByPair {
		if n > count || (n == count && p < pair) {
			pair, count = p, n
		}
	}
	return pair, count, count > 0
}

// GetDailyCounts returns the per-day signal counts as a sorted slice
func (s *SignalStats) GetDailyCounts() []DailyCount {
	counts := make([]DailyCount, 0, len(s.DailyCounts))
	for day, n := range s.DailyCounts {
		date, _ := time.Parse("2006-01-02", day)
		counts = append(counts, DailyCount{
			Day:   date,
			Count: n,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Day.Before(counts[j].Day)
	})
	return counts
}

// DailyCount represents the number of signals emitted on one UTC day
type DailyCount struct {
	Day   time.Time
	Count int
}
