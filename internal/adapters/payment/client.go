package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doorlist/internal/domain"
)

// Config holds configuration for the hosted-checkout payment provider.
type Config struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

type httpProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPProvider returns a PaymentProvider that creates hosted checkout
// sessions through the provider's REST API.
func NewHTTPProvider(cfg Config, client *http.Client) domain.PaymentProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpProvider{client: client, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
}

type lineItem struct {
	Name       string `json:"name"`
	UnitAmount int    `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

type createSessionRequest struct {
	LineItems  []lineItem        `json:"line_items"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type createSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *httpProvider) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSession, error) {
	body := createSessionRequest{
		LineItems: []lineItem{{
			Name:       params.LineItemName,
			UnitAmount: params.UnitAmountCents,
			Quantity:   params.Quantity,
		}},
		Currency:   params.Currency,
		SuccessURL: params.SuccessURL,
		CancelURL:  params.CancelURL,
		Metadata:   params.Metadata,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout session request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment provider returned status: %d", resp.StatusCode)
	}

	var data createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session response: %w", err)
	}
	return &domain.CheckoutSession{ID: data.ID, RedirectURL: data.URL}, nil
}
