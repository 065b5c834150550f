package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

// maxWebhookbody caps inbound webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

type WebhookController struct {
	Logger          *slog.Logger
	Verifier        domain.PaymentWebhookVerifier
	Payments        domain.PaymentWebhookService
	Invites         domain.InviteService
	MessagingSecret string
}

func NewWebhookController(
	logger *slog.Logger,
	verifier domain.PaymentWebhookVerifier,
	payments domain.PaymentWebhookService,
	invites domain.InviteService,
	messagingSecret string,
) *WebhookController {
	return &WebhookController{
		Logger:          logger,
		Verifier:        verifier,
		Payments:        payments,
		Invites:         invites,
		MessagingSecret: messagingSecret,
	}
}

// PaymentWebhook godoc
// @Summary Payment provider webhook
// @Description Verifies the signature and applies the event. Handlers are idempotent, so redelivery always answers 200.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "HMAC-SHA256 of the raw body"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad signature or body)"
// @Router /webhooks/payments [post]
func (c *WebhookController) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable body")
		return
	}
	ev, err := c.Verifier.VerifyAndParse(payload, r.Header.Get("X-Webhook-Signature"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.Logger.WarnContext(r.Context(), "payment webhook signature rejected")
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid signature")
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid payload")
		return
	}
	if err := c.Payments.HandlePaymentEvent(r.Context(), ev); err != nil {
		// A non-nil error means transient infrastructure failure; the provider
		// will redeliver and the handler is idempotent.
		c.Logger.ErrorContext(r.Context(), "payment webhook failed", "event_id", ev.ID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "received"})
}

// DeliveryStatusRequest is the body posted by the messaging provider.
type DeliveryStatusRequest struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// deliveryStatuses maps provider status strings onto the audit log's states.
var deliveryStatuses = map[string]domain.MessageStatus{
	"delivered": domain.MessageStatusDelivered,
	"failed":    domain.MessageStatusFailed,
	"bounced":   domain.MessageStatusBounced,
}

// MessagingWebhook godoc
// @Summary Messaging provider delivery-status webhook
// @Description Updates the message audit log. Unknown message ids are acknowledged without effect.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "HMAC-SHA256 of the raw body"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /webhooks/messaging [post]
func (c *WebhookController) MessagingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unreadable body")
		return
	}
	if !c.validMessagingSignature(payload, r.Header.Get("X-Webhook-Signature")) {
		c.Logger.WarnContext(r.Context(), "messaging webhook signature rejected")
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid signature")
		return
	}
	var req DeliveryStatusRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.MessageID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid payload")
		return
	}
	status, ok := deliveryStatuses[req.Status]
	if !ok {
		// Unknown statuses are acknowledged; the provider's vocabulary may
		// grow ahead of ours.
		c.Logger.InfoContext(r.Context(), "ignoring unknown delivery status", "status", req.Status)
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	if err := c.Invites.HandleDeliveryStatus(r.Context(), req.MessageID, status); err != nil {
		c.Logger.ErrorContext(r.Context(), "delivery status update failed", "message_id", req.MessageID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "received"})
}

func (c *WebhookController) validMessagingSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.MessagingSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
