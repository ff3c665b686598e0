package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"signalBot/internal/adapters/logger"
	"signalBot/internal/domain"
	"signalBot/internal/report"
	"signalBot/internal/strategy"
	"signalBot/internal/strategy/analytics"
	"signalBot/internal/utils"
)

func main() {
	file := flag.String("file", "", "CSV bar file to analyse")
	pair := flag.String("pair", "", "Pair name for the report (defaults to the symbol column)")
	walk := flag.Bool("walk", false, "Replay the file bar by bar and list every signal")
	verbose := flag.Bool("v", false, "Print the full indicator and pattern assessment")
	flag.Parse()

	if *file == "" {
		log.Fatalf("Usage: analyze_csv -file data/EURUSD_1h.csv [-pair EUR/USD] [-walk] [-v]")
	}

	bars, err := utils.ReadBarsFromCSV(*file)
	if err != nil {
		log.Fatalf("Error reading bars from %s: %v", *file, err)
	}
	if len(bars) == 0 {
		log.Fatalf("No bars in %s", *file)
	}
	name := *pair
	if name == "" {
		name = bars[0].Symbol
	}

	// The synthesizer stamps signals with the close time of the bar being replayed.
	var clock time.Time
	strat, err := strategy.New(strategy.Config{
		RiskReward: strategy.DefaultConfig().RiskReward,
		MinRR:      strategy.DefaultConfig().MinRR,
		Now:        func() time.Time { return clock },
	}, logger.NewStdLogger(logger.LevelWarn))
	if err != nil {
		log.Fatalf("Error creating strategy: %v", err)
	}
	formatter := report.NewFormatter("")
	ctx := context.Background()

	if *walk {
		replay(ctx, strat, name, bars, &clock)
		return
	}

	clock = bars[len(bars)-1].CloseTime
	if *verbose {
		out, _ := json.MarshalIndent(strat.Assess(bars), "", "  ")
		fmt.Println(string(out))
	}
	sig := strat.Analyze(ctx, name, bars)
	if sig == nil {
		fmt.Printf("%s: HOLD (no signal over %d bars)\n", name, len(bars))
		return
	}
	fmt.Println(formatter.Format(sig))
}

// replay runs the synthesizer on every prefix of bars that is long enough and
// prints a table of the signals followed by summary statistics.
func replay(ctx context.Context, strat *strategy.Strategy, pair string, bars []domain.Bar, clock *time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Time\tType\tEntry\tTP1\tSL\tStrength\tConfluence\t")

	var signals []*domain.Signal
	for i := strat.RequiredDataPoints(); i <= len(bars); i++ {
		*clock = bars[i-1].CloseTime
		sig := strat.Analyze(ctx, pair, bars[:i])
		if sig == nil {
			continue
		}
		signals = append(signals, sig)
		fmt.Fprintf(w, "%s\t%s\t%.5f\t%.5f\t%.5f\t%s\t%d\t\n",
			sig.Timestamp.UTC().Format("2006-01-02 15:04"),
			sig.Direction,
			sig.EntryPrice,
			sig.TakeProfit1,
			sig.StopLoss,
			sig.Strength,
			sig.Confluence(),
		)
	}
	w.Flush()

	stats := analytics.AnalyzeSignals(signals)
	fmt.Printf("\nBars: %d  Signals: %d  Buy: %d  Sell: %d\n", len(bars), stats.TotalSignals, stats.BuySignals, stats.SellSignals)
	fmt.Printf("Strong: %d  Moderate: %d  Weak: %d\n", stats.StrongSignals, stats.ModerateSignals, stats.WeakSignals)
	if stats.TotalSignals > 0 {
		fmt.Printf("Avg confluence: %.2f  Avg R:R: %.2f  Longest same-direction run: %d  Avg spacing: %s\n",
			stats.AverageConfluence, stats.AverageRewardToRisk, stats.MaxDirectionStreak, stats.AverageSignalSpacing)
	}
}
