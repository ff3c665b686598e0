// Package redispub fans signals out to Redis consumers: a pub/sub channel for
// live listeners, a capped stream for replay and a latest-per-pair key.
package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"

	goredis "github.com/go-redis/redis/v8"
)

const (
	DefaultChannel = "signals"
	streamMaxLen   = 5000
	latestTTL      = 24 * time.Hour
)

// Config configures the Redis publisher.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	Channel  string // Pub/sub channel; the stream is "stream:<channel>"
	Logger   ports.Logger
}

// Publisher implements ports.Publisher.
type Publisher struct {
	client  *goredis.Client
	channel string
	logger  ports.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// Message is the JSON payload written to every destination.
type Message struct {
	Signal     *domain.Signal `json:"signal"`
	Confluence int            `json:"confluence"`
	Report     string         `json:"report"`
}

// New connects to Redis and pings the server.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Redis publisher")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis publisher failed: %w: address is required", ports.ErrNotConfigured)
	}
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w: %w", ports.ErrConnectionFailed, err)
	}

	cfg.Logger.Info(ctx, "Connected to Redis", map[string]interface{}{"addr": cfg.Addr, "channel": channel})
	return &Publisher{client: client, channel: channel, logger: cfg.Logger}, nil
}

// StreamKey returns the stream that keeps published signals for replay.
func StreamKey(channel string) string {
	return "stream:" + channel
}

// LatestKey returns the key holding the latest signal of a pair.
func LatestKey(channel, pair string) string {
	return channel + ":latest:" + strings.NewReplacer("/", "", "-", "", "_", "").Replace(strings.ToUpper(pair))
}

// Encode builds the payload shared by the channel, the stream and the latest key.
func Encode(sig *domain.Signal, report string) ([]byte, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signal", ports.ErrInvalidRequest)
	}
	return json.Marshal(Message{Signal: sig, Confluence: sig.Confluence(), Report: report})
}

// Publish writes XADD, SET and PUBLISH in one pipeline.
func (p *Publisher) Publish(ctx context.Context, sig *domain.Signal, report string) error {
	payload, err := Encode(sig, report)
	if err != nil {
		return fmt.Errorf("redis Publish failed: %w", err)
	}
	data := string(payload)

	pipe := p.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: StreamKey(p.channel),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"pair":      sig.Pair,
			"direction": string(sig.Direction),
			"data":      data,
		},
	})
	pipe.Set(ctx, LatestKey(p.channel, sig.Pair), data, latestTTL)
	pipe.Publish(ctx, p.channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error(ctx, err, "Redis publish pipeline failed", map[string]interface{}{"pair": sig.Pair})
		return fmt.Errorf("redis Publish failed: %w: %w", ports.ErrDeliveryFailed, err)
	}

	p.logger.Debug(ctx, "Signal published", map[string]interface{}{"pair": sig.Pair, "channel": p.channel})
	return nil
}

// Close releases the Redis connection pool.
func (p *Publisher) Close() error {
	return p.client.Close()
}
