package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	maxKlinesPerRequest = 1500
)

// Client implements the ports.BarSource interface over Binance USDⓈ-M futures klines.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	now           func() time.Time
}

var _ ports.BarSource = (*Client)(nil)

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // Overrides the production/testnet URL when set
	Logger     ports.Logger
	Now        func() time.Time // Used to drop the still-forming bar; time.Now when nil
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty, using public endpoints only")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{futuresClient: client, logger: cfg.Logger, now: now}, nil
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string {
	return "binance"
}

// Symbol converts a pair identifier such as "BTC/USDT" into the exchange symbol "BTCUSDT".
func Symbol(pair string) string {
	return strings.ToUpper(strings.NewReplacer("/", "", "-", "", "_", "").Replace(pair))
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature or API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrUnsupportedPair
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -1000, -1001, -1007, -1008: // Unknown, disconnected, timeout, overloaded
			mappedErr = ports.ErrExchangeUnavailable
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.futuresClient.NewPingService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetBars retrieves the most recent closed bars for pair. The bar that is
// still forming is dropped, so up to limit-1 bars may be returned.
func (c *Client) GetBars(ctx context.Context, pair, interval string, limit int) ([]domain.Bar, error) {
	op := "GetBars"
	if limit <= 0 || limit > maxKlinesPerRequest {
		return nil, fmt.Errorf("%s failed: %w: limit %d outside 1..%d", op, ports.ErrInvalidRequest, limit, maxKlinesPerRequest)
	}

	symbol := Symbol(pair)
	binanceKlines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bars, err := translateKlines(binanceKlines, pair, interval)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	now := c.now()
	if n := len(bars); n > 0 && bars[n-1].CloseTime.After(now) {
		bars = bars[:n-1]
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s failed: %w: no closed bars for %s", op, ports.ErrDataUnavailable, pair)
	}

	c.logger.Debug(ctx, "Bars fetched", map[string]interface{}{"pair": pair, "symbol": symbol, "interval": interval, "count": len(bars)})
	return bars, nil
}

// GetBarsRange fetches all bars for pair between start and end, paging through
// the exchange's per-request limit.
func (c *Client) GetBarsRange(ctx context.Context, pair, interval string, start, end time.Time) ([]domain.Bar, error) {
	op := "GetBarsRange"
	symbol := Symbol(pair)
	var all []domain.Bar
	from := start

	for {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxKlinesPerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		bars, err := translateKlines(klines, pair, interval)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		all = append(all, bars...)

		from = time.UnixMilli(klines[len(klines)-1].CloseTime + 1)
		if from.After(end) || len(klines) < maxKlinesPerRequest {
			break
		}
	}

	return all, nil
}

func translateKlines(klines []*futures.Kline, pair, interval string) ([]domain.Bar, error) {
	bars := make([]domain.Bar, 0, len(klines))
	for _, bk := range klines {
		bar, err := translateBinanceKline(bk, pair, interval)
		if err != nil {
			return nil, fmt.Errorf("failed to translate kline: %w", err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func translateBinanceKline(bk *futures.Kline, pair, interval string) (domain.Bar, error) {
	if bk == nil {
		return domain.Bar{}, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return domain.Bar{
		OpenTime:  time.UnixMilli(bk.OpenTime).UTC(),
		CloseTime: time.UnixMilli(bk.CloseTime).UTC(),
		Symbol:    pair,
		Interval:  interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
