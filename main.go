package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"time"

	"signalBot/config"
	"signalBot/internal/adapters/binanceclient"
	"signalBot/internal/adapters/csvfeed"
	"signalBot/internal/adapters/logger"
	"signalBot/internal/adapters/mockfeed"
	"signalBot/internal/adapters/redispub"
	"signalBot/internal/adapters/sqlite"
	"signalBot/internal/adapters/telegram"
	"signalBot/internal/api"
	"signalBot/internal/app"
	"signalBot/internal/metrics"
	"signalBot/internal/ports"
	"signalBot/internal/report"
	"signalBot/internal/strategy"
)

func main() {
	schedule := flag.Bool("schedule", false, "Run analysis on a schedule until interrupted")
	testMode := flag.Bool("test", false, "Analyse and print reports without delivering or storing them")
	intervalMin := flag.Int("interval", 0, "Schedule interval in minutes (overrides SCHEDULE_INTERVAL_MINUTES)")
	pair := flag.String("pair", "", "Analyse a single pair and print its report")
	summary := flag.Bool("summary", false, "Send the daily signal summary")
	welcome := flag.Bool("welcome", false, "Send the welcome message")
	checkTelegram := flag.Bool("check-telegram", false, "Verify the Telegram bot credentials and exit")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *intervalMin > 0 {
		cfg.ScheduleInterval = time.Duration(*intervalMin) * time.Minute
	}

	// 2. Initialize Logger
	appLogger := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": string(cfg.LogFormat)})

	// 3. Initialize Bar Source
	source, err := newBarSource(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize bar source")
		log.Fatalf("FATAL: Failed to initialize bar source: %v", err)
	}
	appLogger.Info(ctx, "Bar source initialized", map[string]interface{}{"source": source.Name()})

	// 4. Initialize Strategy
	strat, err := strategy.New(strategy.Config{
		RiskReward: cfg.RiskReward,
		MinRR:      cfg.MinRR,
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal strategy")
		log.Fatalf("FATAL: Failed to initialize signal strategy: %v", err)
	}

	// 5. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	// 6. Initialize Delivery
	opts := []app.Option{app.WithRepository(repo)}
	var notifier *telegram.Notifier
	if cfg.TelegramEnabled() {
		notifier, err = telegram.New(telegram.Config{
			BotToken:  cfg.TelegramBotToken,
			ChannelID: cfg.TelegramChannelID,
			Logger:    appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Telegram notifier")
			log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
		}
		opts = append(opts, app.WithNotifier(notifier))
	} else {
		appLogger.Warn(ctx, "Telegram is not configured, reports are printed only")
	}

	if *checkTelegram {
		if notifier == nil {
			log.Fatalf("Telegram is not configured: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHANNEL_ID")
		}
		info, err := notifier.TestConnection(ctx)
		if err != nil {
			log.Fatalf("Telegram connection failed: %v", err)
		}
		fmt.Printf("Connected to Telegram bot @%s (id %d)\n", info.Username, info.ID)
		return
	}

	if cfg.RedisAddr != "" {
		publisher, err := redispub.New(ctx, redispub.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
			Logger:   appLogger,
		})
		if err != nil {
			// The publisher is an extra channel; run without it.
			appLogger.Error(ctx, err, "Redis publisher unavailable, continuing without it")
		} else {
			defer publisher.Close()
			opts = append(opts, app.WithPublisher(publisher))
		}
	}

	m := metrics.New()
	opts = append(opts, app.WithMetrics(m))

	// 7. Initialize Application Service
	service, err := app.NewSignalService(cfg, appLogger, source, strat, report.NewFormatter(cfg.ReportBrand), opts...)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal service")
		log.Fatalf("FATAL: Failed to initialize signal service: %v", err)
	}

	// 8. One-shot commands
	switch {
	case *pair != "":
		sig, err := service.AnalyzePair(ctx, *pair)
		if err != nil {
			log.Fatalf("Analysis of %s failed: %v", *pair, err)
		}
		if sig == nil {
			fmt.Printf("%s: HOLD (no signal)\n", *pair)
			return
		}
		fmt.Println(service.Formatter().Format(sig))
		return
	case *summary:
		text, err := service.SendDailySummary(ctx)
		fmt.Println(text)
		if err != nil {
			log.Fatalf("Daily summary not sent: %v", err)
		}
		return
	case *welcome:
		if notifier == nil {
			log.Fatalf("Telegram is not configured: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHANNEL_ID")
		}
		if err := notifier.Send(ctx, service.Formatter().FormatWelcome()); err != nil {
			log.Fatalf("Welcome message not sent: %v", err)
		}
		return
	}

	// 9. Start HTTP servers
	servers := startServers(ctx, cfg, service, repo, m, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				appLogger.Error(ctx, err, "HTTP server shutdown failed", map[string]interface{}{"addr": srv.Addr})
			}
		}
	}()

	// 10. Run
	send := !*testMode
	if *schedule {
		if err := service.RunScheduled(ctx, cfg.ScheduleInterval, send); err != nil {
			appLogger.Error(ctx, err, "Scheduled run exited with error")
			log.Fatalf("FATAL: Scheduled run exited with error: %v", err)
		}
		appLogger.Info(ctx, "Application finished gracefully.")
		return
	}

	outcomes, err := service.RunOnce(ctx, send)
	for _, out := range outcomes {
		fmt.Println(out.Report)
		fmt.Println()
	}
	if err != nil {
		appLogger.Error(ctx, err, "Run failed")
		log.Fatalf("FATAL: Run failed: %v", err)
	}
	appLogger.Info(ctx, "Run complete", map[string]interface{}{"signals": len(outcomes), "delivered": send})
}

// newBarSource selects the bar source named by DATA_SOURCE.
func newBarSource(cfg *config.Config, appLogger ports.Logger) (ports.BarSource, error) {
	switch cfg.DataSource {
	case config.SourceBinance:
		return binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
	case config.SourceCSV:
		return csvfeed.New(cfg.CSVDir, appLogger)
	default:
		return mockfeed.New(mockfeed.Config{Seed: cfg.MockSeed, Logger: appLogger})
	}
}

// startServers starts the API and metrics listeners that are configured.
func startServers(ctx context.Context, cfg *config.Config, service *app.SignalService, repo ports.SignalRepository, m *metrics.Metrics, appLogger ports.Logger) []*http.Server {
	var servers []*http.Server
	if cfg.APIAddr != "" {
		handler, err := api.NewHandler(service, repo, service.Formatter(), m.Handler(), appLogger)
		if err != nil {
			appLogger.Error(ctx, err, "API handler not started")
		} else {
			servers = append(servers, handler.Server(cfg.APIAddr))
		}
	}
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.APIAddr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
	}
	for _, srv := range servers {
		go func(srv *http.Server) {
			appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error(ctx, err, "HTTP server stopped", map[string]interface{}{"addr": srv.Addr})
			}
		}(srv)
	}
	return servers
}
