package leadlifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/phone"
)

// RescheduleAppointment moves a booked event to a new start and records it
// on the caller's lead. Only the event currently booked on that lead can be
// moved.
func (s *Service) RescheduleAppointment(ctx context.Context, req models.RescheduleRequest) (*models.BookingResult, error) {
	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" || req.NewStartTime == "" || req.ClientPhone == "" {
		return nil, domain.NewValidationError("Missing required fields: eventId, newStartTime, clientPhone")
	}
	start, err := time.Parse(time.RFC3339, req.NewStartTime)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("Invalid newStartTime: %s", req.NewStartTime))
	}

	lead, err := s.bookedLead(ctx, req.ClientPhone, eventID)
	if err != nil {
		return nil, err
	}

	movedID, err := s.scheduler.Reschedule(ctx, eventID, start)
	if err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("Rescheduled via %s - Event ID: %s", s.cfg.AgentName, movedID)
	lead, err = s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.ScheduledDate = models.TimePtr(start.UTC())
		l.ScheduledNotes = models.StringPtr(notes)
		return nil
	})
	if err != nil {
		s.log.Error("Failed to record reschedule on lead", "event_id", movedID, "error", err)
		return nil, err
	}
	s.log.Info("Appointment rescheduled", "lead_id", lead.ID, "event_id", movedID)

	if !lead.OptedOut {
		s.background(ctx, func(ctx context.Context) {
			_, _ = s.sendSMS(ctx, kindRescheduleConfirm, lead.Phone,
				rescheduleConfirmationMessage(start, s.cfg.Location, s.cfg.OperatorContact))
		})
	}
	s.background(ctx, func(ctx context.Context) {
		s.notifyOperator(ctx, kindOperatorReschedule,
			operatorRescheduleMessage(lead.FullName(), lead.Phone, start, s.cfg.Location))
	})

	return &models.BookingResult{EventID: movedID}, nil
}

// CancelAppointment deletes the event booked on the caller's lead and
// clears the lead's scheduled date. Calendar attendees are notified by the
// calendar itself.
func (s *Service) CancelAppointment(ctx context.Context, req models.CancelRequest) error {
	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" || req.ClientPhone == "" {
		return domain.NewValidationError("Missing required fields: eventId, clientPhone")
	}

	lead, err := s.bookedLead(ctx, req.ClientPhone, eventID)
	if err != nil {
		return err
	}

	if err := s.scheduler.Cancel(ctx, eventID); err != nil {
		return err
	}

	notes := fmt.Sprintf("Cancelled via %s - Event ID: %s", s.cfg.AgentName, eventID)
	if _, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.ScheduledDate = nil
		l.ScheduledNotes = models.StringPtr(notes)
		return nil
	}); err != nil {
		s.log.Error("Failed to record cancellation on lead", "event_id", eventID, "error", err)
		return err
	}
	s.log.Info("Appointment cancelled", "lead_id", lead.ID, "event_id", eventID)

	s.background(ctx, func(ctx context.Context) {
		s.notifyOperator(ctx, kindOperatorCancel, operatorCancelMessage(lead.FullName(), lead.Phone, eventID))
	})
	return nil
}

// bookedLead returns the lead for rawPhone when eventID is the appointment
// currently booked on it
func (s *Service) bookedLead(ctx context.Context, rawPhone, eventID string) (*models.Lead, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}
	lead, err := s.leads.GetByPhone(ctx, normalized)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("Appointment")
		}
		return nil, err
	}
	if lead.ScheduledDate == nil || lead.ScheduledNotes == nil ||
		!strings.HasSuffix(*lead.ScheduledNotes, "Event ID: "+eventID) {
		return nil, domain.NewNotFoundError("Appointment")
	}
	return lead, nil
}
