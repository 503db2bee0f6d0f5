package leadlifecycle

import (
	"context"
	"strings"

	"github.com/jordanlanch/ironoak/pkg/billing"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/phone"
)

// HandlePaymentCompleted marks the matching lead paid. A checkout without a
// usable phone, or for a phone no lead owns, is logged and ignored so the
// provider never retries it. Only a store failure is returned.
func (s *Service) HandlePaymentCompleted(ctx context.Context, checkout billing.CheckoutCompleted) error {
	log := s.log.With("session_id", checkout.SessionID)

	if strings.TrimSpace(checkout.Phone) == "" {
		log.Error("No phone in checkout session")
		return nil
	}
	normalized, err := phone.Normalize(checkout.Phone)
	if err != nil {
		log.Error("Invalid phone in checkout session", "phone", checkout.Phone, "error", err)
		return nil
	}

	lead, err := s.leads.GetByPhone(ctx, normalized)
	if err != nil {
		if domain.IsNotFound(err) {
			log.Error("Lead not found for checkout phone", "phone", normalized)
			return nil
		}
		return err
	}

	paid, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
		amount := checkout.AmountTotal
		l.PaymentStatus = models.PaymentPaid
		l.AmountPaid = &amount
		l.PaidAt = models.TimePtr(s.now().UTC())
		if (l.Email == nil || *l.Email == "") && checkout.Email != "" {
			l.Email = models.StringPtr(checkout.Email)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.RecordPayment()
	log.Info("Payment confirmed", "lead_id", paid.ID, "amount", FormatCents(checkout.AmountTotal))

	if !paid.OptedOut {
		s.background(ctx, func(ctx context.Context) {
			_, _ = s.sendSMS(ctx, kindPaymentConfirm, paid.Phone, paymentConfirmationMessage(paid.FirstName, s.cfg.Course))
		})
	}
	s.background(ctx, func(ctx context.Context) {
		s.notifyOperator(ctx, kindOperatorPayment, operatorPaymentMessage(paid, checkout.AmountTotal, s.cfg.Course))
	})
	if s.mailer != nil {
		s.background(ctx, func(ctx context.Context) {
			if err := s.mailer.SendPaymentReceipt(paid, s.cfg.Course); err != nil {
				log.Error("Failed to email payment receipt", "lead_id", paid.ID, "error", err)
			}
		})
	}
	return nil
}
