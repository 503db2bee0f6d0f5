// Package billing verifies Stripe webhook deliveries and extracts the
// checkout-completed payload used to mark a lead as paid.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// EventCheckoutCompleted is the only event type that changes lead state
const EventCheckoutCompleted = "checkout.session.completed"

const dedupeTTL = 24 * time.Hour

// CheckoutCompleted carries what a completed checkout tells us about the buyer
type CheckoutCompleted struct {
	SessionID   string
	Phone       string
	Email       string
	AmountTotal int64
}

// Event is a verified webhook delivery
type Event struct {
	ID       string
	Type     string
	Checkout *CheckoutCompleted
}

// Deduper remembers event ids across deliveries
type Deduper interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Webhook verifies Stripe-Signature headers
type Webhook struct {
	secret string
	dedupe Deduper
}

// NewWebhook creates a verifier for the endpoint's signing secret
func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: secret}
}

// SetDeduper enables redelivery suppression
func (w *Webhook) SetDeduper(d Deduper) {
	w.dedupe = d
}

// Parse verifies payload against signature. A bad signature is an
// Unauthorized domain error; anything else about the event is decoded
// leniently so the provider always gets a 200.
func (w *Webhook) Parse(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, w.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, domain.NewUnauthorizedError(fmt.Sprintf("Webhook Error: %v", err))
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("failed to decode checkout session: %v", err))
	}

	out.Checkout = &CheckoutCompleted{
		SessionID:   sess.ID,
		AmountTotal: sess.AmountTotal,
	}
	if sess.CustomerDetails != nil {
		out.Checkout.Phone = sess.CustomerDetails.Phone
		out.Checkout.Email = sess.CustomerDetails.Email
	}
	return out, nil
}

// FirstDelivery reports whether eventID has not been processed yet. Without
// a deduper, or when the deduper fails, every delivery counts as first.
func (w *Webhook) FirstDelivery(ctx context.Context, eventID string) bool {
	if w.dedupe == nil || eventID == "" {
		return true
	}
	first, err := w.dedupe.FirstSeen(ctx, "stripe:event:"+eventID, dedupeTTL)
	if err != nil {
		return true
	}
	return first
}
