package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/jordanlanch/ironoak/pkg/billing"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// Stripe event payloads can carry large metadata and line items
const maxWebhookBody = 512 << 10

// PaymentService marks leads paid
type PaymentService interface {
	HandlePaymentCompleted(ctx context.Context, checkout billing.CheckoutCompleted) error
}

// WebhookVerifier verifies and deduplicates Stripe deliveries
type WebhookVerifier interface {
	Parse(payload []byte, signature string) (*billing.Event, error)
	FirstDelivery(ctx context.Context, eventID string) bool
}

// BillingHandler handles the Stripe webhook
type BillingHandler struct {
	service  PaymentService
	verifier WebhookVerifier
	metrics  Metrics
	log      logger.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service PaymentService, verifier WebhookVerifier, metrics Metrics, log logger.Logger) *BillingHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BillingHandler{
		service:  service,
		verifier: verifier,
		metrics:  orNop(metrics),
		log:      log.With("handler", "stripe"),
	}
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Verifies the Stripe-Signature header over the raw body. Only a
// @Description bad signature is rejected; every other outcome is acknowledged.
// @Tags Billing
// @Success 200 {object} models.WebhookAck
// @Failure 400 {string} string "Webhook Error"
// @Router /api/ai/stripe/webhook [post]
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.String(http.StatusBadRequest, "Webhook Error: unreadable body")
	}

	event, err := h.verifier.Parse(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if domain.IsUnauthorized(err) {
			h.metrics.RecordSignatureFailure("stripe")
			h.log.Warn("Stripe signature verification failed", "error", err)
			return c.String(http.StatusBadRequest, domain.GetMessage(err))
		}
		h.log.Error("Unreadable Stripe event", "error", err)
		return c.JSON(http.StatusOK, models.WebhookAck{Received: true})
	}

	ctx := c.Request().Context()
	if !h.verifier.FirstDelivery(ctx, event.ID) {
		h.metrics.RecordWebhookDuplicate()
		h.log.Info("Duplicate Stripe delivery ignored", "event_id", event.ID)
		return c.JSON(http.StatusOK, models.WebhookAck{Received: true})
	}

	if event.Checkout != nil {
		if err := h.service.HandlePaymentCompleted(ctx, *event.Checkout); err != nil {
			h.log.Error("Payment handling failed", "event_id", event.ID, "error", err)
		}
	}
	return c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}
