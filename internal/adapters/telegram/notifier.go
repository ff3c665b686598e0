// Package telegram delivers reports to a Telegram channel through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"signalBot/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// Config holds Bot API credentials and the target channel.
type Config struct {
	BotToken  string
	ChannelID string
	APIURL    string // Overrides the Bot API host when set
	Timeout   time.Duration
	Logger    ports.Logger
}

// Notifier implements ports.Notifier over the Bot API sendMessage method.
type Notifier struct {
	baseURL   string
	channelID string
	client    *http.Client
	logger    ports.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// BotInfo is the subset of the getMe result the service logs.
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsBot    bool   `json:"is_bot"`
}

// New creates a notifier. Both the token and the channel are required.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.BotToken == "" || cfg.ChannelID == "" {
		return nil, fmt.Errorf("telegram notifier failed: %w: bot token and channel id are required", ports.ErrNotConfigured)
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		baseURL:   strings.TrimRight(apiURL, "/") + "/bot" + cfg.BotToken,
		channelID: cfg.ChannelID,
		client:    &http.Client{Timeout: timeout},
		logger:    cfg.Logger,
	}, nil
}

// Send posts text verbatim to the channel with HTML parse mode and link previews disabled.
func (n *Notifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]interface{}{
		"chat_id":                  n.channelID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("telegram Send failed: %w: %w", ports.ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram Send failed: %w: %w", ports.ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := n.do(req); err != nil {
		n.logger.Error(ctx, err, "Failed to send Telegram message", map[string]interface{}{"channel": n.channelID})
		return fmt.Errorf("telegram Send failed: %w: %w", ports.ErrDeliveryFailed, err)
	}
	n.logger.Info(ctx, "Message sent", map[string]interface{}{"channel": n.channelID})
	return nil
}

// TestConnection calls getMe and returns the bot identity.
func (n *Notifier) TestConnection(ctx context.Context) (*BotInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/getMe", nil)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w: %w", ports.ErrConnectionFailed, err)
	}
	result, err := n.do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w: %w", ports.ErrConnectionFailed, err)
	}
	var info BotInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w: %w", ports.ErrConnectionFailed, err)
	}
	n.logger.Info(ctx, "Bot connected", map[string]interface{}{"username": info.Username})
	return &info, nil
}

// do executes req and unwraps the Bot API envelope.
func (n *Notifier) do(req *http.Request) (json.RawMessage, error) {
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("api error %d: %s", env.ErrorCode, env.Description)
	}
	return env.Result, nil
}
