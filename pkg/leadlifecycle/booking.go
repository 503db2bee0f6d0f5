package leadlifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/ironoak/pkg/calendar"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/phone"
)

// CheckAvailability lists free slots for a bookable inquiry type
func (s *Service) CheckAvailability(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error) {
	if t == "" {
		return nil, domain.NewValidationError("inquiryType is required")
	}
	if t == models.InquiryAIIntensive {
		return nil, domain.NewValidationError("AI Intensive does not require booking")
	}
	return s.scheduler.AvailableSlots(ctx, t)
}

// BookAppointment books a calendar slot for the caller and records it on
// the lead, creating the lead when the phone is new. A conflict returns
// SLOT_UNAVAILABLE and leaves the lead untouched.
func (s *Service) BookAppointment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	t := req.Category()
	name := strings.TrimSpace(req.ClientName)
	emailAddr := strings.TrimSpace(req.ClientEmail)
	if t == "" || req.StartTime == "" || name == "" || emailAddr == "" || req.ClientPhone == "" {
		return nil, domain.NewValidationError("Missing required fields: inquiryType, startTime, clientName, clientEmail, clientPhone")
	}
	if t == models.InquiryAIIntensive {
		return nil, domain.NewValidationError("AI Intensive does not require booking")
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("Invalid startTime: %s", req.StartTime))
	}

	normalized, err := phone.Normalize(req.ClientPhone)
	if err != nil {
		return nil, err
	}

	result, err := s.scheduler.Book(ctx, calendar.BookingParams{
		InquiryType: t,
		Start:       start,
		ClientName:  name,
		ClientEmail: emailAddr,
		ClientPhone: normalized,
		Message:     req.Message,
	})
	if err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("Booked via %s - Event ID: %s", s.cfg.AgentName, result.EventID)
	now := s.now().UTC()
	lead, created, err := s.leads.Upsert(ctx, normalized,
		func() *models.Lead {
			return &models.Lead{
				FirstName:        name,
				Email:            models.StringPtr(emailAddr),
				InquiryType:      t,
				Message:          models.StringPtr(req.Message),
				ConsentGiven:     true,
				ConsentTimestamp: models.TimePtr(now),
				CallStatus:       models.CallCompleted,
				SMSStatus:        models.SMSSent,
				SMSSentAt:        models.TimePtr(now),
				PaymentStatus:    models.PaymentPending,
				ScheduledDate:    models.TimePtr(start.UTC()),
				ScheduledNotes:   models.StringPtr(notes),
			}
		},
		func(l *models.Lead) {
			l.FirstName = name
			l.Email = models.StringPtr(emailAddr)
			l.InquiryType = t
			l.Message = models.StringPtr(req.Message)
			l.ScheduledDate = models.TimePtr(start.UTC())
			l.ScheduledNotes = models.StringPtr(notes)
		},
	)
	if err != nil {
		// the event exists even if the lead write failed
		s.log.Error("Failed to record booking on lead", "event_id", result.EventID, "error", err)
		return nil, err
	}
	if created {
		s.metrics.RecordLeadCreated("booking")
	}
	s.log.Info("Appointment booked", "lead_id", lead.ID, "event_id", result.EventID, "created", created)

	if !lead.OptedOut {
		s.background(ctx, func(ctx context.Context) {
			_, _ = s.sendSMS(ctx, kindBookingConfirm, normalized,
				bookingConfirmationMessage(t, start, s.cfg.Location, s.cfg.OperatorContact))
		})
	}
	s.background(ctx, func(ctx context.Context) {
		s.notifyOperator(ctx, kindOperatorBooking,
			operatorBookingMessage(t, start, s.cfg.Location, name, normalized, emailAddr))
	})

	return result, nil
}

// SendInfo texts the course details to a caller on the agent's request and
// records the send on the lead, creating it when the phone is new.
func (s *Service) SendInfo(ctx context.Context, rawPhone, firstName string) (string, error) {
	if strings.TrimSpace(rawPhone) == "" {
		return "", domain.NewValidationError("Phone number is required")
	}
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}

	existing, err := s.leads.GetByPhone(ctx, normalized)
	switch {
	case err == nil && existing.OptedOut:
		return "", domain.NewValidationError("Recipient has opted out of text messages")
	case err != nil && !domain.IsNotFound(err):
		return "", err
	}

	sid, err := s.sendSMS(ctx, kindSendInfo, normalized, sendInfoMessage(name, s.cfg, phone.Display(s.cfg.OperatorPhone)))
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	_, created, err := s.leads.Upsert(ctx, normalized,
		func() *models.Lead {
			outcome := models.OutcomeDelivered
			return &models.Lead{
				FirstName:        name,
				ConsentGiven:     true,
				ConsentTimestamp: models.TimePtr(now),
				UserAgent:        models.StringPtr(s.cfg.AgentName),
				CallStatus:       models.CallCompleted,
				SMSStatus:        models.SMSSent,
				SMSOutcome:       &outcome,
				SMSSID:           models.StringPtr(sid),
				SMSSentAt:        models.TimePtr(now),
				PaymentStatus:    models.PaymentPending,
			}
		},
		func(l *models.Lead) {
			// a gated send in flight owns the status
			if l.SMSStatus == models.SMSPending {
				l.SMSStatus = models.SMSSent
			}
			l.SMSSID = models.StringPtr(sid)
			l.SMSSentAt = models.TimePtr(now)
		},
	)
	if err != nil {
		s.log.Error("Failed to record info text on lead", "phone", normalized, "error", err)
		return sid, nil
	}
	if created {
		s.metrics.RecordLeadCreated("send_info")
	}
	return sid, nil
}
