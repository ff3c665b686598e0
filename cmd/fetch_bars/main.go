package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"signalBot/config"
	"signalBot/internal/adapters/binanceclient"
	"signalBot/internal/adapters/csvfeed"
	"signalBot/internal/adapters/logger"
	"signalBot/internal/utils"
)

func main() {
	pair := flag.String("pair", "BTC/USDT", "Pair to fetch")
	interval := flag.String("interval", "1h", "Bar interval")
	days := flag.Int("days", 30, "Days of history to fetch")
	out := flag.String("out", "", "Output directory (defaults to CSV_DIR)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -*days)

	fmt.Printf("Fetching bars for %s %s from %s to %s...\n", *pair, *interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	bars, err := binanceClient.GetBarsRange(ctx, *pair, *interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"count": len(bars)})

	dir := *out
	if dir == "" {
		dir = cfg.CSVDir
	}
	filename := filepath.Join(dir, csvfeed.FileName(*pair, *interval))
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
