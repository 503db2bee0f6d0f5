package leadlifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
)

// Stats summarizes the lead partition for the daily report
type Stats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Paid      int `json:"paid"`
	SMSSent   int `json:"smsSent"`
	SMSFailed int `json:"smsFailed"`
	OptedOut  int `json:"optedOut"`
	Booked    int `json:"booked"`
}

// List returns every lead, newest first
func (s *Service) List(ctx context.Context) ([]*models.Lead, error) {
	return s.leads.List(ctx)
}

// Get returns one lead
func (s *Service) Get(ctx context.Context, id string) (*models.Lead, error) {
	return s.leads.Get(ctx, id)
}

// Patch applies admin edits. Lifecycle fields owned by the engine (sms,
// consent, opt-out, phone) cannot be set this way.
func (s *Service) Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	if patch.CallStatus != nil {
		if _, ok := models.ParseCallStatus(string(*patch.CallStatus)); !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("Invalid call status: %s", *patch.CallStatus))
		}
	}
	if patch.FirstName != nil && *patch.FirstName == "" {
		return nil, domain.NewValidationError("firstName cannot be empty")
	}

	lead, err := s.leads.Patch(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("Lead updated by admin", "lead_id", id)
	return lead, nil
}

// Delete removes a lead. A pending follow-up for it becomes a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Lead deleted by admin", "lead_id", id)
	return nil
}

// Stats counts leads by lifecycle state. New counts leads created after since.
func (s *Service) Stats(ctx context.Context, since time.Time) (Stats, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Total: len(leads)}
	for _, l := range leads {
		if l.CreatedAt.After(since) {
			st.New++
		}
		if l.PaymentStatus == models.PaymentPaid {
			st.Paid++
		}
		switch l.SMSStatus {
		case models.SMSSent:
			st.SMSSent++
		case models.SMSFailed:
			st.SMSFailed++
		}
		if l.OptedOut {
			st.OptedOut++
		}
		if l.ScheduledDate != nil {
			st.Booked++
		}
	}
	return st, nil
}
