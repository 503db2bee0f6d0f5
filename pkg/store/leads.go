package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
)

const (
	// PartitionAILeads holds intake, call and payment leads
	PartitionAILeads = "ai-leads"
	// PartitionContacts holds general contact-form inquiries
	PartitionContacts = "leads"

	aiLeadsFile  = "ai-intensive-leads.json"
	contactsFile = "leads.json"
)

// LeadStore is the durable record store for the ai-leads partition.
// Records handed out are copies; mutate only through Update/Upsert.
type LeadStore struct {
	col *Collection[*models.Lead]
	now func() time.Time
}

// NewLeadStore opens the ai-leads partition under dataDir
func NewLeadStore(dataDir string, locks *PartitionLocks) *LeadStore {
	return &LeadStore{
		col: NewCollection[*models.Lead](PartitionAILeads, filepath.Join(dataDir, aiLeadsFile), locks),
		now: time.Now,
	}
}

// SetClock overrides the timestamp source
func (s *LeadStore) SetClock(now func() time.Time) {
	s.now = now
}

// Collection exposes the underlying partition for snapshots
func (s *LeadStore) Collection() *Collection[*models.Lead] {
	return s.col
}

func (s *LeadStore) find(ctx context.Context, match func(*models.Lead) bool, what string) (*models.Lead, error) {
	var found *models.Lead
	err := s.col.View(ctx, func(records []*models.Lead) error {
		for _, l := range records {
			if match(l) {
				found = l.Clone()
				return nil
			}
		}
		return domain.NewNotFoundError(what)
	})
	return found, err
}

// Get returns the lead with id
func (s *LeadStore) Get(ctx context.Context, id string) (*models.Lead, error) {
	return s.find(ctx, func(l *models.Lead) bool { return l.ID == id }, "Lead")
}

// GetByPhone returns the lead whose canonical phone equals phone
func (s *LeadStore) GetByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	if phone == "" {
		return nil, domain.NewNotFoundError("Lead")
	}
	return s.find(ctx, func(l *models.Lead) bool { return l.Phone == phone }, "Lead")
}

// GetByCallSID returns the lead whose last call carried sid
func (s *LeadStore) GetByCallSID(ctx context.Context, sid string) (*models.Lead, error) {
	if sid == "" {
		return nil, domain.NewNotFoundError("Lead")
	}
	return s.find(ctx, func(l *models.Lead) bool { return l.CallSID != nil && *l.CallSID == sid }, "Lead")
}

// List returns every lead, newest first
func (s *LeadStore) List(ctx context.Context) ([]*models.Lead, error) {
	var out []*models.Lead
	err := s.col.View(ctx, func(records []*models.Lead) error {
		out = make([]*models.Lead, 0, len(records))
		for _, l := range records {
			out = append(out, l.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create inserts lead. The phone uniqueness check runs inside the same
// lock as the write, so two racing intakes cannot both succeed.
func (s *LeadStore) Create(ctx context.Context, lead *models.Lead) error {
	if lead.Phone == "" {
		return domain.NewValidationError("phone is required")
	}
	rec := lead.Clone()
	s.stampNew(rec)

	err := s.col.Mutate(ctx, func(records []*models.Lead) ([]*models.Lead, error) {
		for _, l := range records {
			if l.Phone == rec.Phone {
				return nil, domain.NewDuplicatePhoneError(rec.Phone)
			}
			if l.ID == rec.ID {
				return nil, fmt.Errorf("lead id %s already exists", rec.ID)
			}
		}
		return append(records, rec), nil
	})
	if err != nil {
		return err
	}

	*lead = *rec.Clone()
	return nil
}

// Update applies fn to the stored lead and persists it. fn returning an
// error aborts without writing. smsStatus may never move backwards.
func (s *LeadStore) Update(ctx context.Context, id string, fn func(*models.Lead) error) (*models.Lead, error) {
	var updated *models.Lead
	err := s.col.Mutate(ctx, func(records []*models.Lead) ([]*models.Lead, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, domain.NewNotFoundError("Lead")
		}
		next := records[i].Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		if err := s.checkInvariants(records[i], next); err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now().UTC()
		records[i] = next
		updated = next.Clone()
		return records, nil
	})
	return updated, err
}

// Patch applies the admin-editable fields of patch to the lead with id
func (s *LeadStore) Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	return s.Update(ctx, id, func(l *models.Lead) error {
		patch.Apply(l)
		return nil
	})
}

// Delete removes the lead with id
func (s *LeadStore) Delete(ctx context.Context, id string) error {
	return s.col.Mutate(ctx, func(records []*models.Lead) ([]*models.Lead, error) {
		i := indexOf(records, id)
		if i < 0 {
			return nil, domain.NewNotFoundError("Lead")
		}
		return append(records[:i], records[i+1:]...), nil
	})
}

// TryBeginSend is the exclusive-send gate. It moves smsStatus from pending
// to sending and records outcome, returning true, only when the lead is
// currently pending and still consents to offers. Otherwise it returns
// false and writes nothing.
func (s *LeadStore) TryBeginSend(ctx context.Context, id string, outcome models.SMSOutcome) (bool, error) {
	acquired := false
	err := s.col.Mutate(ctx, func(records []*models.Lead) ([]*models.Lead, error) {
		i := indexOf(records, id)
		if i < 0 || records[i].SMSStatus != models.SMSPending || !records[i].CanReceiveOffers() {
			return nil, nil
		}
		next := records[i].Clone()
		next.SMSStatus = models.SMSSending
		o := outcome
		next.SMSOutcome = &o
		next.UpdatedAt = s.now().UTC()
		records[i] = next
		acquired = true
		return records, nil
	})
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Upsert finds the lead by phone and patches it, or inserts the result of
// create when none exists, in a single critical section.
func (s *LeadStore) Upsert(ctx context.Context, phone string, create func() *models.Lead, patch func(*models.Lead)) (*models.Lead, bool, error) {
	var (
		result  *models.Lead
		created bool
	)
	err := s.col.Mutate(ctx, func(records []*models.Lead) ([]*models.Lead, error) {
		for i, l := range records {
			if l.Phone != phone {
				continue
			}
			next := l.Clone()
			patch(next)
			if err := s.checkInvariants(l, next); err != nil {
				return nil, err
			}
			next.UpdatedAt = s.now().UTC()
			records[i] = next
			result = next.Clone()
			return records, nil
		}

		rec := create()
		rec.Phone = phone
		s.stampNew(rec)
		created = true
		result = rec.Clone()
		return append(records, rec), nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (s *LeadStore) stampNew(l *models.Lead) {
	now := s.now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.SMSStatus == "" {
		l.SMSStatus = models.SMSPending
	}
	if l.CallStatus == "" {
		l.CallStatus = models.CallPending
	}
	if l.PaymentStatus == "" {
		l.PaymentStatus = models.PaymentPending
	}
}

func (s *LeadStore) checkInvariants(prev, next *models.Lead) error {
	if next.ID != prev.ID {
		return domain.NewValidationError("lead id is immutable")
	}
	if next.Phone != prev.Phone {
		return domain.NewValidationError("lead phone is immutable")
	}
	if !prev.SMSStatus.CanAdvanceTo(next.SMSStatus) {
		return domain.NewValidationError(fmt.Sprintf("smsStatus cannot move from %s to %s", prev.SMSStatus, next.SMSStatus))
	}
	return nil
}
