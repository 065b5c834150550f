package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"doorlist/internal/domain"
)

type hmacWebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier returns a PaymentWebhookVerifier that checks the
// provider's HMAC-SHA256 signature over the raw payload before parsing it.
func NewWebhookVerifier(secret string) domain.PaymentWebhookVerifier {
	return &hmacWebhookVerifier{secret: []byte(secret)}
}

type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID  string            `json:"session_id"`
		PaymentRef string            `json:"payment_ref"`
		Amount     int               `json:"amount"`
		Metadata   map[string]string `json:"metadata"`
	} `json:"data"`
}

func (v *hmacWebhookVerifier) VerifyAndParse(payload []byte, signature string) (*domain.PaymentEvent, error) {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, domain.ErrInvalidSignature
	}

	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	return &domain.PaymentEvent{
		ID:          body.ID,
		Type:        body.Type,
		SessionID:   body.Data.SessionID,
		PaymentRef:  body.Data.PaymentRef,
		AmountCents: body.Data.Amount,
		Metadata:    body.Data.Metadata,
	}, nil
}
