package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"

	"signalBot/config"
	"signalBot/internal/adapters/logger"
	"signalBot/internal/domain"
	"signalBot/internal/metrics"
	"signalBot/internal/ports"
	"signalBot/internal/report"
	"signalBot/internal/strategy/analytics"
)

const summaryWindow = 24 * time.Hour

// PairResult is the outcome of analysing one pair. Signal is nil for HOLD or on error.
type PairResult struct {
	Pair   string
	Signal *domain.Signal
	Err    error
}

// Outcome is a produced signal together with what happened to it.
type Outcome struct {
	Signal    *domain.Signal
	Report    string
	RecordID  string // Empty when the signal was not persisted
	Delivered bool
}

// SignalService orchestrates fetching, synthesis, delivery and history.
type SignalService struct {
	cfg       *config.Config
	logger    ports.Logger
	source    ports.BarSource
	analyzer  ports.Analyzer
	formatter report.Formatter

	// Optional collaborators; nil disables them.
	repo      ports.SignalRepository
	notifier  ports.Notifier
	publisher ports.Publisher
	metrics   *metrics.Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex // Protects lastRun
	lastRun time.Time
}

// Option configures optional collaborators of the service.
type Option func(*SignalService)

// WithRepository persists delivered signals.
func WithRepository(repo ports.SignalRepository) Option {
	return func(s *SignalService) { s.repo = repo }
}

// WithNotifier delivers reports to a human channel.
func WithNotifier(n ports.Notifier) Option {
	return func(s *SignalService) { s.notifier = n }
}

// WithPublisher fans signals out to machine consumers.
func WithPublisher(p ports.Publisher) Option {
	return func(s *SignalService) { s.publisher = p }
}

// WithMetrics records Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SignalService) { s.metrics = m }
}

// WithClock overrides the wall clock used for history windows.
func WithClock(now func() time.Time) Option {
	return func(s *SignalService) { s.now = now }
}

// NewSignalService creates a new application service instance.
func NewSignalService(
	cfg *config.Config,
	log ports.Logger,
	source ports.BarSource,
	analyzer ports.Analyzer,
	formatter report.Formatter,
	opts ...Option,
) (*SignalService, error) {
	// Validate dependencies
	if cfg == nil || log == nil || source == nil || analyzer == nil {
		return nil, fmt.Errorf("missing required dependencies for SignalService")
	}
	if len(cfg.Pairs) == 0 {
		return nil, fmt.Errorf("%w: at least one pair is required", ports.ErrConfigurationError)
	}
	if cfg.BarLimit < analyzer.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: bar limit %d is below the %d bars the analyzer needs",
			ports.ErrConfigurationError, cfg.BarLimit, analyzer.RequiredDataPoints())
	}
	if cfg.FetchMaxAttempts < 1 {
		return nil, fmt.Errorf("%w: fetch attempts must be at least 1", ports.ErrConfigurationError)
	}

	s := &SignalService{
		cfg:       cfg,
		logger:    log,
		source:    source,
		analyzer:  analyzer,
		formatter: formatter,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Formatter returns the report formatter the service renders signals with.
func (s *SignalService) Formatter() report.Formatter {
	return s.formatter
}

// LastRun returns the completion time of the last RunOnce, zero before the first run.
func (s *SignalService) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// AnalyzePair fetches bars for one pair and runs the synthesizer over them.
// A nil signal with a nil error means the evidence did not support a trade.
func (s *SignalService) AnalyzePair(ctx context.Context, pair string) (*domain.Signal, error) {
	start := time.Now()
	s.logger.Info(ctx, "Analyzing pair", map[string]interface{}{"pair": pair})

	bars, err := s.fetchBars(ctx, pair)
	if err != nil {
		s.observe(pair, nil, err, start)
		return nil, err
	}

	sig := s.analyzer.Analyze(ctx, pair, bars)
	s.observe(pair, sig, nil, start)
	if sig == nil {
		s.logger.Info(ctx, "No signal", map[string]interface{}{"pair": pair})
		return nil, nil
	}
	s.logger.Info(ctx, "Signal generated", map[string]interface{}{
		"pair":       pair,
		"direction":  sig.Direction,
		"strength":   sig.Strength,
		"confluence": sig.Confluence(),
	})
	return sig, nil
}

func (s *SignalService) observe(pair string, sig *domain.Signal, err error, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAnalysis(pair, sig, err, time.Since(start))
	}
}

// fetchBars retries transient source failures with exponential backoff.
func (s *SignalService) fetchBars(ctx context.Context, pair string) ([]domain.Bar, error) {
	b := &backoff.Backoff{
		Min:    s.cfg.FetchBackoffMin,
		Max:    s.cfg.FetchBackoffMax,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.FetchMaxAttempts; attempt++ {
		bars, err := s.source.GetBars(ctx, pair, s.cfg.BarInterval, s.cfg.BarLimit)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		if !retryable(err) || attempt == s.cfg.FetchMaxAttempts {
			break
		}

		wait := b.Duration()
		s.logger.Warn(ctx, "Bar fetch failed, retrying", map[string]interface{}{
			"pair":    pair,
			"source":  s.source.Name(),
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
		if s.metrics != nil {
			s.metrics.FetchRetries.WithLabelValues(s.source.Name()).Inc()
		}
		if err := s.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	if s.metrics != nil {
		s.metrics.FetchErrors.WithLabelValues(s.source.Name()).Inc()
	}
	s.logger.Error(ctx, lastErr, "Failed to fetch bars", map[string]interface{}{"pair": pair, "source": s.source.Name()})
	return nil, fmt.Errorf("fetch bars for %s: %w", pair, lastErr)
}

// retryable reports whether a source error may clear up on its own.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ports.ErrContextCanceled),
		errors.Is(err, ports.ErrInvalidRequest),
		errors.Is(err, ports.ErrUnsupportedPair),
		errors.Is(err, ports.ErrAuthenticationFailed),
		errors.Is(err, ports.ErrConfigurationError):
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AnalyzeAll analyses every configured pair concurrently. Results come back in
// pair order and one pair failing never affects another.
func (s *SignalService) AnalyzeAll(ctx context.Context) []PairResult {
	results := make([]PairResult, len(s.cfg.Pairs))
	var wg sync.WaitGroup
	for i, pair := range s.cfg.Pairs {
		wg.Add(1)
		go func(i int, pair string) {
			defer wg.Done()
			sig, err := s.AnalyzePair(ctx, pair)
			results[i] = PairResult{Pair: pair, Signal: sig, Err: err}
		}(i, pair)
	}
	wg.Wait()
	return results
}

// RunOnce analyses all pairs and, when send is set, delivers, publishes and
// stores every signal. It fails only when no pair could be analysed.
func (s *SignalService) RunOnce(ctx context.Context, send bool) ([]Outcome, error) {
	ctx = logger.WithRunID(ctx, uuid.NewString())
	s.logger.Info(ctx, "Starting signal analysis", map[string]interface{}{
		"pairs":  len(s.cfg.Pairs),
		"source": s.source.Name(),
		"send":   send,
	})

	results := s.AnalyzeAll(ctx)

	var outcomes []Outcome
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		if res.Signal == nil {
			continue
		}
		out := Outcome{Signal: res.Signal, Report: s.formatter.Format(res.Signal)}
		if send {
			s.deliver(ctx, &out)
		}
		outcomes = append(outcomes, out)
	}

	finished := s.now()
	s.mu.Lock()
	s.lastRun = finished
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.MarkRun(finished)
	}

	s.logger.Info(ctx, "Analysis complete", map[string]interface{}{
		"signals": len(outcomes),
		"failed":  len(errs),
	})
	if len(errs) == len(results) && len(errs) > 0 {
		return outcomes, fmt.Errorf("%w: every pair failed: %w", ports.ErrDataUnavailable, errors.Join(errs...))
	}
	return outcomes, nil
}

// deliver sends, publishes and persists one outcome. Failures are logged and
// never stop the remaining signals.
func (s *SignalService) deliver(ctx context.Context, out *Outcome) {
	fields := map[string]interface{}{"pair": out.Signal.Pair}

	if s.notifier == nil {
		s.logger.Warn(ctx, "Notifier not configured, skipping send", fields)
	} else {
		err := s.notifier.Send(ctx, out.Report)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to deliver signal", fields)
		}
		out.Delivered = err == nil
		if s.metrics != nil {
			s.metrics.ObserveDelivery("notifier", err)
		}
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, out.Signal, out.Report)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to publish signal", fields)
		}
		if s.metrics != nil {
			s.metrics.ObserveDelivery("publisher", err)
		}
	}

	if s.repo != nil {
		id, err := s.repo.Save(ctx, out.Signal, out.Report, out.Delivered)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to store signal", fields)
			return
		}
		out.RecordID = id
	}
}

// RunScheduled runs an analysis immediately and then every interval until ctx
// is cancelled or the process receives SIGINT or SIGTERM.
func (s *SignalService) RunScheduled(ctx context.Context, interval time.Duration, send bool) error {
	if interval <= 0 {
		return fmt.Errorf("%w: schedule interval must be positive", ports.ErrConfigurationError)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info(ctx, "Starting scheduled analysis", map[string]interface{}{"interval": interval.String()})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx, send); err != nil {
			s.logger.Error(ctx, err, "Error in scheduled run")
		}
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Scheduled analysis stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Stats aggregates the stored signals of the last 24 hours.
func (s *SignalService) Stats(ctx context.Context) (*analytics.SignalStats, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: signal history is not configured", ports.ErrNotConfigured)
	}
	records, err := s.repo.FindSince(ctx, s.now().Add(-summaryWindow))
	if err != nil {
		return nil, err
	}
	signals := make([]*domain.Signal, 0, len(records))
	for _, rec := range records {
		signals = append(signals, rec.Signal)
	}
	return analytics.AnalyzeSignals(signals), nil
}

// DailySummary renders the summary of the last 24 hours.
func (s *SignalService) DailySummary(ctx context.Context) (string, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return "", err
	}
	return s.formatter.FormatDailySummary(stats), nil
}

// SendDailySummary renders the summary and delivers it through the notifier.
func (s *SignalService) SendDailySummary(ctx context.Context) (string, error) {
	text, err := s.DailySummary(ctx)
	if err != nil {
		return "", err
	}
	if s.notifier == nil {
		return text, fmt.Errorf("%w: no notifier for the daily summary", ports.ErrNotConfigured)
	}
	if err := s.notifier.Send(ctx, text); err != nil {
		return text, err
	}
	s.logger.Info(ctx, "Daily summary sent")
	return text, nil
}
