package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"doorlist/internal/domain"

	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifier_ValidSignature(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment.completed",
		"data": {
			"session_id": "cs_123",
			"payment_ref": "pay_456",
			"amount": 5000,
			"metadata": {"ticket_id": "tk-1"}
		}
	}`)
	verifier := NewWebhookVerifier("whsec_test")

	event, err := verifier.VerifyAndParse(payload, sign("whsec_test", payload))
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, domain.PaymentEventCompleted, event.Type)
	require.Equal(t, "cs_123", event.SessionID)
	require.Equal(t, "pay_456", event.PaymentRef)
	require.Equal(t, 5000, event.AmountCents)
	require.Equal(t, "tk-1", event.Metadata["ticket_id"])
}

func TestWebhookVerifier_BadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.completed"}`)
	verifier := NewWebhookVerifier("whsec_test")

	_, err := verifier.VerifyAndParse(payload, sign("wrong-secret", payload))
	require.True(t, errors.Is(err, domain.ErrInvalidSignature))
}

func TestWebhookVerifier_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.completed"}`)
	verifier := NewWebhookVerifier("whsec_test")
	sig := sign("whsec_test", payload)

	tampered := []byte(`{"id":"evt_2","type":"payment.completed"}`)
	_, err := verifier.VerifyAndParse(tampered, sig)
	require.True(t, errors.Is(err, domain.ErrInvalidSignature))
}
