package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"doorlist/internal/domain"
)

// Config holds configuration for the SMS provider client.
type Config struct {
	BaseURL    string
	APIKey     string
	FromNumber string
}

type httpSender struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	fromNumber string
}

// NewHTTPSender returns an SMSSender that posts messages to the provider's
// REST API. With an empty BaseURL a logging no-op sender is returned instead.
func NewHTTPSender(cfg Config, client *http.Client, logger *slog.Logger) domain.SMSSender {
	if cfg.BaseURL == "" {
		return &noopSender{logger: logger}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSender{
		client:     client,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		fromNumber: cfg.FromNumber,
	}
}

type sendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (s *httpSender) Send(ctx context.Context, to, body string) (string, error) {
	payload, err := json.Marshal(sendRequest{From: s.fromNumber, To: to, Body: body})
	if err != nil {
		return "", fmt.Errorf("failed to encode sms request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("sms provider returned status: %d", resp.StatusCode)
	}

	var data sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode sms response: %w", err)
	}
	return data.ID, nil
}

type noopSender struct {
	logger *slog.Logger
}

func (n *noopSender) Send(ctx context.Context, to, body string) (string, error) {
	n.logger.Info("sms would be sent (noop)", "to", to)
	return "", nil
}
