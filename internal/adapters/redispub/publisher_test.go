package redispub

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "stream:signals", StreamKey("signals"))
	assert.Equal(t, "signals:latest:EURUSD", LatestKey("signals", "EUR/USD"))
	assert.Equal(t, "fx:latest:XAUUSD", LatestKey("fx", "xau-usd"))
}

func TestEncode(t *testing.T) {
	sig := &domain.Signal{
		Pair: "GBP/USD", Direction: domain.Sell, EntryPrice: 1.265,
		TakeProfit1: 1.262, TakeProfit2: 1.2605, StopLoss: 1.267,
		Strength:  domain.StrengthModerate,
		Timestamp: time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC),
		Evidence:  domain.Evidence{TrendCross: true, OrderBlock: true},
	}
	payload, err := Encode(sig, "<b>SELL</b>")
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, 2, msg.Confluence)
	assert.Equal(t, "<b>SELL</b>", msg.Report)
	assert.Equal(t, sig, msg.Signal)

	_, err = Encode(nil, "")
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{Addr: "localhost:6379"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Logger: nopLogger{}})
	assert.ErrorIs(t, err, ports.ErrNotConfigured)
}

func TestNew_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = New(context.Background(), Config{Addr: addr, Logger: nopLogger{}})
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)
}
