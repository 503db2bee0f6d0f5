package store

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
)

// ContactStore holds general contact-form inquiries
type ContactStore struct {
	col *Collection[*models.ContactLead]
	now func() time.Time
}

// NewContactStore opens the leads partition under dataDir
func NewContactStore(dataDir string, locks *PartitionLocks) *ContactStore {
	return &ContactStore{
		col: NewCollection[*models.ContactLead](PartitionContacts, filepath.Join(dataDir, contactsFile), locks),
		now: time.Now,
	}
}

// Collection exposes the underlying partition for snapshots
func (s *ContactStore) Collection() *Collection[*models.ContactLead] {
	return s.col
}

// Create assigns an id and timestamp and appends c
func (s *ContactStore) Create(ctx context.Context, c *models.ContactLead) error {
	rec := c.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	err := s.col.Mutate(ctx, func(records []*models.ContactLead) ([]*models.ContactLead, error) {
		return append(records, rec), nil
	})
	if err != nil {
		return err
	}
	*c = *rec
	return nil
}

// Get returns the inquiry with id
func (s *ContactStore) Get(ctx context.Context, id string) (*models.ContactLead, error) {
	var found *models.ContactLead
	err := s.col.View(ctx, func(records []*models.ContactLead) error {
		if i := indexOf(records, id); i >= 0 {
			found = records[i].Clone()
			return nil
		}
		return domain.NewNotFoundError("Contact")
	})
	return found, err
}

// List returns every inquiry, newest first
func (s *ContactStore) List(ctx context.Context) ([]*models.ContactLead, error) {
	var out []*models.ContactLead
	err := s.col.View(ctx, func(records []*models.ContactLead) error {
		out = records
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
