package leadlifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/followup"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/phone"
	"github.com/jordanlanch/ironoak/pkg/telephony"
)

const (
	voicePath  = "/api/ai/twilio/voice"
	statusPath = "/api/ai/twilio/status"
)

// Submit validates an intake form, creates the lead and returns it. The
// category text, the operator alert and the follow-up call are started
// after the record is persisted and never block the caller.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.Lead, error) {
	firstName := strings.TrimSpace(req.FirstName)
	category := req.Category()
	if firstName == "" || strings.TrimSpace(req.Phone) == "" || category == "" || !req.ConsentGiven {
		return nil, domain.NewValidationError("Missing required fields or consent not given")
	}
	if !category.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("Invalid inquiry type: %s", category))
	}

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lead := &models.Lead{
		ID:               uuid.NewString(),
		FirstName:        firstName,
		LastName:         models.StringPtr(strings.TrimSpace(req.LastName)),
		Phone:            normalized,
		Email:            models.StringPtr(strings.TrimSpace(req.Email)),
		InquiryType:      category,
		Message:          models.StringPtr(strings.TrimSpace(req.Message)),
		ConsentGiven:     true,
		ConsentTimestamp: models.TimePtr(now),
		IPAddress:        models.StringPtr(req.IPAddress),
		UserAgent:        models.StringPtr(req.UserAgent),
		CallStatus:       models.CallPending,
		SMSStatus:        models.SMSPending,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        now,
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.metrics.RecordLeadCreated("intake")
	s.log.Info("Lead created", "lead_id", lead.ID, "inquiry_type", category)

	created := lead.Clone()
	s.background(ctx, func(ctx context.Context) {
		s.notifyOperator(ctx, kindOperatorLead, operatorNewLeadMessage(created, s.now().In(s.cfg.Location)))
	})
	s.background(ctx, func(ctx context.Context) {
		s.sendCategoryMessage(ctx, created)
	})

	if category == models.InquiryAIIntensive {
		s.scheduleFollowUp(ctx, created)
	}

	return lead, nil
}

// sendCategoryMessage sends the intake text and finalizes smsStatus. Once
// it lands as sent, later call outcomes find the gate closed.
func (s *Service) sendCategoryMessage(ctx context.Context, lead *models.Lead) {
	body := categoryMessage(lead.InquiryType, lead.FirstName, s.cfg)

	sid, err := s.sendSMS(ctx, kindCategory, lead.Phone, body)
	s.recordSendResult(ctx, lead.ID, sid, err)
}

func (s *Service) scheduleFollowUp(ctx context.Context, lead *models.Lead) {
	if s.followUps == nil {
		s.log.Warn("No follow-up scheduler configured", "lead_id", lead.ID)
		return
	}

	delay := s.delay()
	job := followup.Job{
		LeadID: lead.ID,
		Phone:  lead.Phone,
		FireAt: s.now().Add(delay),
	}
	if err := s.followUps.Schedule(ctx, job); err != nil {
		s.log.Error("Failed to schedule follow-up call", "lead_id", lead.ID, "error", err)
		return
	}
	s.log.Info("Follow-up call scheduled", "lead_id", lead.ID, "delay", delay.String())
}

// RunFollowUp places the delayed call. State is re-read at fire time: a
// deleted, paid or opted-out lead is skipped.
func (s *Service) RunFollowUp(ctx context.Context, job followup.Job) error {
	lead, err := s.leads.GetByPhone(ctx, job.Phone)
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.Info("Skipping follow-up, lead was deleted", "lead_id", job.LeadID)
			s.metrics.RecordFollowUp("skipped")
			return nil
		}
		return fmt.Errorf("failed to load lead for follow-up: %w", err)
	}

	switch {
	case lead.PaymentStatus != models.PaymentPending:
		s.log.Info("Skipping follow-up, already paid", "lead_id", lead.ID)
		s.metrics.RecordFollowUp("skipped")
		return nil
	case lead.OptedOut:
		s.log.Info("Skipping follow-up, lead opted out", "lead_id", lead.ID)
		s.metrics.RecordFollowUp("skipped")
		return nil
	}

	sid, err := s.notifier.PlaceCall(ctx, telephony.CallRequest{
		To:             lead.Phone,
		URL:            s.cfg.BaseURL + voicePath,
		StatusCallback: s.cfg.BaseURL + statusPath,
	})
	s.metrics.RecordNotification("followup_call", err == nil)
	if err != nil {
		s.log.Error("Failed to place follow-up call", "lead_id", lead.ID, "error", err)
		s.metrics.RecordFollowUp("failed")
		if _, uerr := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.CallStatus = models.CallFailed
			return nil
		}); uerr != nil {
			s.log.Warn("Could not mark follow-up as failed, lead may have been deleted", "lead_id", lead.ID, "error", uerr)
		}
		return nil
	}

	s.metrics.RecordFollowUp("placed")
	s.log.Info("Follow-up call placed", "lead_id", lead.ID, "call_sid", sid)
	if _, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.CallSID = models.StringPtr(sid)
		return nil
	}); err != nil {
		s.log.Warn("Could not record call sid, lead may have been deleted", "lead_id", lead.ID, "error", err)
	}
	return nil
}

// SubmitContact stores a general contact-form inquiry and emails the operator
func (s *Service) SubmitContact(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactLead, error) {
	if ip == "" {
		ip = "unknown"
	}
	contact := &models.ContactLead{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Organization: strings.TrimSpace(req.Organization),
		Objective:    strings.TrimSpace(req.Objective),
		Message:      strings.TrimSpace(req.Message),
		IP:           ip,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	s.log.Info("Contact inquiry stored", "contact_id", contact.ID)

	if s.mailer != nil {
		saved := contact.Clone()
		s.background(ctx, func(ctx context.Context) {
			if err := s.mailer.SendContactNotification(saved); err != nil {
				s.log.Error("Failed to email contact inquiry", "contact_id", saved.ID, "error", err)
			}
		})
	}
	return contact, nil
}

// ListContacts returns every contact-form inquiry, newest first
func (s *Service) ListContacts(ctx context.Context) ([]*models.ContactLead, error) {
	return s.contacts.List(ctx)
}
