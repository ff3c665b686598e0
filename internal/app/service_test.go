package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"signalBot/config"
	"signalBot/internal/domain"
	"signalBot/internal/metrics"
	"signalBot/internal/ports"
	"signalBot/internal/report"
)

// Mock implementations
type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

// fakeSource returns a queue of errors per pair before succeeding.
type fakeSource struct {
	mu    sync.Mutex
	errs  map[string][]error
	calls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{errs: map[string][]error{}, calls: map[string]int{}}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) GetBars(ctx context.Context, pair, interval string, limit int) ([]domain.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[pair]++
	if queue := f.errs[pair]; len(queue) > 0 {
		f.errs[pair] = queue[1:]
		return nil, queue[0]
	}
	bars := make([]domain.Bar, limit)
	for i := range bars {
		bars[i] = domain.Bar{Symbol: pair, Interval: interval, Open: 1, High: 1, Low: 1, Close: 1}
	}
	return bars, nil
}

func (f *fakeSource) callCount(pair string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pair]
}

// fakeAnalyzer returns a canned signal per pair, or nil.
type fakeAnalyzer struct {
	signals map[string]*domain.Signal
}

func (f *fakeAnalyzer) RequiredDataPoints() int { return 50 }

func (f *fakeAnalyzer) Analyze(ctx context.Context, pair string, bars []domain.Bar) *domain.Signal {
	return f.signals[pair]
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, sig *domain.Signal, rep string) error {
	return m.Called(ctx, sig, rep).Error(0)
}

// memRepo is an in-memory SignalRepository.
type memRepo struct {
	mu      sync.Mutex
	records []*ports.SignalRecord
	saveErr error
}

func (r *memRepo) Save(ctx context.Context, sig *domain.Signal, rep string, delivered bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return "", r.saveErr
	}
	id := fmt.Sprintf("rec-%d", len(r.records)+1)
	r.records = append(r.records, &ports.SignalRecord{ID: id, Signal: sig, Report: rep, Delivered: delivered, CreatedAt: sig.Timestamp})
	return id, nil
}

func (r *memRepo) FindRecent(ctx context.Context, limit int) ([]*ports.SignalRecord, error) {
	return r.records, nil
}

func (r *memRepo) FindLatestByPair(ctx context.Context, pair string) (*ports.SignalRecord, error) {
	return nil, nil
}

func (r *memRepo) FindSince(ctx context.Context, since time.Time) ([]*ports.SignalRecord, error) {
	var out []*ports.SignalRecord
	for _, rec := range r.records {
		if !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	recs, err := r.FindSince(ctx, since)
	return len(recs), err
}

var serviceNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func testConfig(pairs ...string) *config.Config {
	return &config.Config{
		Pairs:            pairs,
		BarInterval:      "1h",
		BarLimit:         100,
		FetchMaxAttempts: 3,
		FetchBackoffMin:  time.Millisecond,
		FetchBackoffMax:  time.Millisecond,
	}
}

func testSignal(pair string, dir domain.Direction, at time.Time) *domain.Signal {
	return &domain.Signal{
		Pair: pair, Direction: dir, EntryPrice: 1.085, TakeProfit1: 1.0874,
		TakeProfit2: 1.0886, StopLoss: 1.0834, Strength: domain.StrengthWeak,
		Analysis: "EMA 9/21 Bullish Crossover", Timestamp: at,
		Evidence: domain.Evidence{TrendCross: true},
	}
}

func newTestService(t *testing.T, cfg *config.Config, src *fakeSource, an *fakeAnalyzer, opts ...Option) (*SignalService, *mockLogger) {
	t.Helper()
	log := &mockLogger{}
	opts = append(opts, WithClock(func() time.Time { return serviceNow }))
	s, err := NewSignalService(cfg, log, src, an, report.NewFormatter(""), opts...)
	require.NoError(t, err)
	s.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return s, log
}

func TestNewSignalService_Validation(t *testing.T) {
	log := &mockLogger{}
	src := newFakeSource()
	an := &fakeAnalyzer{}
	f := report.NewFormatter("")

	tests := []struct {
		name     string
		cfg      *config.Config
		log      ports.Logger
		src      ports.BarSource
		analyzer ports.Analyzer
		wantErr  error
	}{
		{"nil config", nil, log, src, an, nil},
		{"nil logger", testConfig("EUR/USD"), nil, src, an, nil},
		{"nil source", testConfig("EUR/USD"), log, nil, an, nil},
		{"nil analyzer", testConfig("EUR/USD"), log, src, nil, nil},
		{"no pairs", testConfig(), log, src, an, ports.ErrConfigurationError},
		{"bar limit too small", func() *config.Config { c := testConfig("EUR/USD"); c.BarLimit = 20; return c }(), log, src, an, ports.ErrConfigurationError},
		{"no attempts", func() *config.Config { c := testConfig("EUR/USD"); c.FetchMaxAttempts = 0; return c }(), log, src, an, ports.ErrConfigurationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSignalService(tt.cfg, tt.log, tt.src, tt.analyzer, f)
			assert.Nil(t, s)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzePair(t *testing.T) {
	sig := testSignal("EUR/USD", domain.Buy, serviceNow)
	s, log := newTestService(t, testConfig("EUR/USD", "GBP/USD"), newFakeSource(),
		&fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": sig}})

	got, err := s.AnalyzePair(context.Background(), "EUR/USD")
	require.NoError(t, err)
	assert.Same(t, sig, got)

	got, err = s.AnalyzePair(context.Background(), "GBP/USD")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, log.infoMsgs, "No signal")
}

func TestAnalyzePair_RetriesTransientErrors(t *testing.T) {
	src := newFakeSource()
	src.errs["EUR/USD"] = []error{ports.ErrRateLimited, ports.ErrExchangeUnavailable}
	sig := testSignal("EUR/USD", domain.Buy, serviceNow)
	m := metrics.New()
	s, log := newTestService(t, testConfig("EUR/USD"), src,
		&fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": sig}}, WithMetrics(m))

	got, err := s.AnalyzePair(context.Background(), "EUR/USD")
	require.NoError(t, err)
	assert.Same(t, sig, got)
	assert.Equal(t, 3, src.callCount("EUR/USD"))
	assert.Len(t, log.warnMsgs, 2)
}

func TestAnalyzePair_GivesUp(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"attempts exhausted", []error{ports.ErrRateLimited, ports.ErrRateLimited, ports.ErrRateLimited}, 3, ports.ErrRateLimited},
		{"unsupported pair is final", []error{ports.ErrUnsupportedPair}, 1, ports.ErrUnsupportedPair},
		{"invalid request is final", []error{fmt.Errorf("wrapped: %w", ports.ErrInvalidRequest)}, 1, ports.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.errs["EUR/USD"] = tt.errs
			s, log := newTestService(t, testConfig("EUR/USD"), src, &fakeAnalyzer{})

			got, err := s.AnalyzePair(context.Background(), "EUR/USD")
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, src.callCount("EUR/USD"))
			assert.Contains(t, log.errorMsgs, "Failed to fetch bars")
		})
	}
}

func TestAnalyzeAll_PreservesPairOrderAndIsolatesFailures(t *testing.T) {
	pairs := []string{"EUR/USD", "GBP/USD", "USD/JPY", "XAU/USD"}
	src := newFakeSource()
	src.errs["USD/JPY"] = []error{ports.ErrUnsupportedPair}
	an := &fakeAnalyzer{signals: map[string]*domain.Signal{
		"EUR/USD": testSignal("EUR/USD", domain.Buy, serviceNow),
		"XAU/USD": testSignal("XAU/USD", domain.Sell, serviceNow),
	}}
	s, _ := newTestService(t, testConfig(pairs...), src, an)

	results := s.AnalyzeAll(context.Background())
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, pairs[i], res.Pair)
	}
	assert.NotNil(t, results[0].Signal)
	assert.Nil(t, results[1].Signal)
	assert.NoError(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, ports.ErrUnsupportedPair)
	assert.Equal(t, domain.Sell, results[3].Signal.Direction)
}

func TestRunOnce_Send(t *testing.T) {
	eur := testSignal("EUR/USD", domain.Buy, serviceNow)
	gbp := testSignal("GBP/USD", domain.Sell, serviceNow)
	an := &fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": eur, "GBP/USD": gbp}}

	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, report.NewFormatter("").Format(eur)).Return(nil).Once()
	notifier.On("Send", mock.Anything, report.NewFormatter("").Format(gbp)).Return(errors.New("telegram down")).Once()
	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	repo := &memRepo{}
	m := metrics.New()

	s, log := newTestService(t, testConfig("EUR/USD", "AUD/USD", "GBP/USD"), newFakeSource(), an,
		WithNotifier(notifier), WithPublisher(publisher), WithRepository(repo), WithMetrics(m))

	outcomes, err := s.RunOnce(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "EUR/USD", outcomes[0].Signal.Pair)
	assert.True(t, outcomes[0].Delivered)
	assert.Equal(t, "rec-1", outcomes[0].RecordID)
	assert.Contains(t, outcomes[0].Report, "EUR/USD SIGNAL - BUY")

	assert.Equal(t, "GBP/USD", outcomes[1].Signal.Pair)
	assert.False(t, outcomes[1].Delivered)
	assert.Equal(t, "rec-2", outcomes[1].RecordID)

	require.Len(t, repo.records, 2)
	assert.True(t, repo.records[0].Delivered)
	assert.False(t, repo.records[1].Delivered)
	assert.Contains(t, log.errorMsgs, "Failed to deliver signal")
	assert.Equal(t, serviceNow, s.LastRun())

	notifier.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRunOnce_TestModeDoesNotDeliver(t *testing.T) {
	an := &fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": testSignal("EUR/USD", domain.Buy, serviceNow)}}
	notifier := &mockNotifier{}
	repo := &memRepo{}
	s, _ := newTestService(t, testConfig("EUR/USD"), newFakeSource(), an, WithNotifier(notifier), WithRepository(repo))

	outcomes, err := s.RunOnce(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.NotEmpty(t, outcomes[0].Report)
	assert.False(t, outcomes[0].Delivered)
	assert.Empty(t, outcomes[0].RecordID)
	assert.Empty(t, repo.records)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRunOnce_NoNotifierStillStores(t *testing.T) {
	an := &fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": testSignal("EUR/USD", domain.Buy, serviceNow)}}
	repo := &memRepo{}
	s, log := newTestService(t, testConfig("EUR/USD"), newFakeSource(), an, WithRepository(repo))

	outcomes, err := s.RunOnce(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Delivered)
	require.Len(t, repo.records, 1)
	assert.Contains(t, log.warnMsgs, "Notifier not configured, skipping send")
}

func TestRunOnce_StoreFailureIsLogged(t *testing.T) {
	an := &fakeAnalyzer{signals: map[string]*domain.Signal{"EUR/USD": testSignal("EUR/USD", domain.Buy, serviceNow)}}
	repo := &memRepo{saveErr: ports.ErrQueryFailed}
	s, log := newTestService(t, testConfig("EUR/USD"), newFakeSource(), an, WithRepository(repo))

	outcomes, err := s.RunOnce(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].RecordID)
	assert.Contains(t, log.errorMsgs, "Failed to store signal")
}

func TestRunOnce_AllPairsFail(t *testing.T) {
	src := newFakeSource()
	src.errs["EUR/USD"] = []error{ports.ErrUnsupportedPair}
	src.errs["GBP/USD"] = []error{ports.ErrAuthenticationFailed}
	s, _ := newTestService(t, testConfig("EUR/USD", "GBP/USD"), src, &fakeAnalyzer{})

	outcomes, err := s.RunOnce(context.Background(), true)
	assert.Empty(t, outcomes)
	assert.ErrorIs(t, err, ports.ErrDataUnavailable)
	assert.ErrorIs(t, err, ports.ErrAuthenticationFailed)
}

func TestRunScheduled(t *testing.T) {
	src := newFakeSource()
	s, _ := newTestService(t, testConfig("EUR/USD"), src, &fakeAnalyzer{})

	assert.ErrorIs(t, s.RunScheduled(context.Background(), 0, false), ports.ErrConfigurationError)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunScheduled(ctx, 5*time.Millisecond, false) }()

	require.Eventually(t, func() bool { return src.callCount("EUR/USD") >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunScheduled did not stop after cancellation")
	}
}

func TestDailySummary(t *testing.T) {
	repo := &memRepo{}
	ctx := context.Background()
	_, _ = repo.Save(ctx, testSignal("EUR/USD", domain.Buy, serviceNow.Add(-30*time.Hour)), "old", true)
	_, _ = repo.Save(ctx, testSignal("EUR/USD", domain.Buy, serviceNow.Add(-3*time.Hour)), "a", true)
	_, _ = repo.Save(ctx, testSignal("EUR/USD", domain.Sell, serviceNow.Add(-2*time.Hour)), "b", true)
	_, _ = repo.Save(ctx, testSignal("XAU/USD", domain.Buy, serviceNow.Add(-time.Hour)), "c", true)

	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()
	s, _ := newTestService(t, testConfig("EUR/USD"), newFakeSource(), &fakeAnalyzer{},
		WithRepository(repo), WithNotifier(notifier))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSignals)
	assert.Equal(t, 2, stats.BuySignals)
	assert.Equal(t, 1, stats.SellSignals)

	text, err := s.SendDailySummary(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "<b>Signals Today:</b> 3")
	assert.Contains(t, text, "<b>Most Active:</b> EUR/USD (2)")
	notifier.AssertExpectations(t)
}

func TestDailySummary_NotConfigured(t *testing.T) {
	s, _ := newTestService(t, testConfig("EUR/USD"), newFakeSource(), &fakeAnalyzer{})
	_, err := s.DailySummary(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotConfigured)

	s, _ = newTestService(t, testConfig("EUR/USD"), newFakeSource(), &fakeAnalyzer{}, WithRepository(&memRepo{}))
	text, err := s.SendDailySummary(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotConfigured)
	assert.NotEmpty(t, text)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(ports.ErrRateLimited))
	assert.True(t, retryable(errors.New("connection reset")))
	assert.False(t, retryable(context.Canceled))
	assert.False(t, retryable(fmt.Errorf("x: %w", ports.ErrUnsupportedPair)))
}
