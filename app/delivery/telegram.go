package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTelegramAPIURL = "https://api.telegram.org"
	// Bot API limit for the text of a single message.
	telegramMaxRunes = 4096
	telegramTimeout  = 20 * time.Second
)

type TelegramConfig struct {
	Token  string
	ChatID string
	APIURL string
}

func (c TelegramConfig) Ready() bool {
	return c.Token != "" && c.ChatID != ""
}

type TelegramNotifier struct {
	cfg        TelegramConfig
	httpClient *http.Client
}

func NewTelegramNotifier(cfg TelegramConfig, httpClient *http.Client) *TelegramNotifier {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultTelegramAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: telegramTimeout}
	}
	return &TelegramNotifier{cfg: cfg, httpClient: httpClient}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts text to the configured chat. A response with "ok": false is an
// *APIError even when the HTTP status is 200.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                n.cfg.ChatID,
		Text:                  truncateMessage(text, telegramMaxRunes),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	endpoint := strings.TrimRight(n.cfg.APIURL, "/") + "/bot" + n.cfg.Token + "/sendMessage"

	timeoutCtx, cancel := context.WithTimeout(ctx, telegramTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Err: errors.New("failed to create request")}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: scrubURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if !result.OK {
		code := result.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Code: code, Description: result.Description}
	}

	return nil
}

// The request URL embeds the bot token, so *url.Error must not be
// formatted as is.
func scrubURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func truncateMessage(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes-1]) + "…"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
