package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLeadStore(t *testing.T) (*LeadStore, string) {
	dir := t.TempDir()
	return NewLeadStore(dir, NewPartitionLocks()), dir
}

func newLead(phone string) *models.Lead {
	return &models.Lead{
		FirstName:    "Dana",
		Phone:        phone,
		InquiryType:  models.InquiryAIIntensive,
		ConsentGiven: true,
	}
}

func TestLeadStore_CreateAndGet(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, models.SMSPending, lead.SMSStatus)
	assert.Equal(t, models.CallPending, lead.CallStatus)
	assert.Equal(t, models.PaymentPending, lead.PaymentStatus)
	assert.False(t, lead.CreatedAt.IsZero())

	t.Run("Success - by id", func(t *testing.T) {
		got, err := s.Get(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got.FirstName)
	})

	t.Run("Success - by phone", func(t *testing.T) {
		got, err := s.GetByPhone(ctx, "+14035550100")
		require.NoError(t, err)
		assert.Equal(t, lead.ID, got.ID)
	})

	t.Run("Error - unknown id", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Error - unknown call sid", func(t *testing.T) {
		_, err := s.GetByCallSID(ctx, "CA-none")
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestLeadStore_CreateDuplicatePhone(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newLead("+14035550100")))
	err := s.Create(ctx, newLead("+14035550100"))

	assert.True(t, domain.IsDuplicatePhone(err))
}

func TestLeadStore_ConcurrentCreateSamePhone(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, newLead("+14035550111")); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLeadStore_Update(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })
	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	s.SetClock(func() time.Time { return base.Add(time.Minute) })

	t.Run("Success - refreshes updatedAt", func(t *testing.T) {
		sid := "CA123"
		updated, err := s.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.CallSID = &sid
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "CA123", *updated.CallSID)
		assert.Equal(t, base.Add(time.Minute), updated.UpdatedAt)

		byCall, err := s.GetByCallSID(ctx, "CA123")
		require.NoError(t, err)
		assert.Equal(t, lead.ID, byCall.ID)
	})

	t.Run("Error - not found", func(t *testing.T) {
		_, err := s.Update(ctx, "missing", func(l *models.Lead) error { return nil })
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Error - phone is immutable", func(t *testing.T) {
		_, err := s.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.Phone = "+19999999999"
			return nil
		})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Error - fn error aborts write", func(t *testing.T) {
		_, err := s.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.FirstName = "Changed"
			return domain.NewValidationError("nope")
		})
		require.Error(t, err)

		got, err := s.Get(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got.FirstName)
	})
}

func TestLeadStore_SMSStatusNeverRegresses(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	_, err := s.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.SMSStatus = models.SMSSent
		return nil
	})
	require.NoError(t, err)

	_, err = s.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.SMSStatus = models.SMSPending
		return nil
	})
	assert.True(t, domain.IsValidation(err))

	got, err := s.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SMSSent, got.SMSStatus)
}

func TestLeadStore_TryBeginSend(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	ok, err := s.TryBeginSend(ctx, lead.ID, models.OutcomeMissedOffer)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SMSSending, got.SMSStatus)
	require.NotNil(t, got.SMSOutcome)
	assert.Equal(t, models.OutcomeMissedOffer, *got.SMSOutcome)

	t.Run("second attempt loses", func(t *testing.T) {
		ok, err := s.TryBeginSend(ctx, lead.ID, models.OutcomeCompletedOffer)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.Get(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeMissedOffer, *got.SMSOutcome)
	})

	t.Run("missing lead returns false", func(t *testing.T) {
		ok, err := s.TryBeginSend(ctx, "missing", models.OutcomeMissedOffer)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("opted-out pending lead loses the gate", func(t *testing.T) {
		stopped := newLead("+14035550120")
		require.NoError(t, s.Create(ctx, stopped))
		_, err := s.Update(ctx, stopped.ID, func(l *models.Lead) error {
			l.OptedOut = true
			return nil
		})
		require.NoError(t, err)

		ok, err := s.TryBeginSend(ctx, stopped.ID, models.OutcomeMissedOffer)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.Get(ctx, stopped.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SMSPending, got.SMSStatus)
		assert.Nil(t, got.SMSOutcome)
	})

	t.Run("lead without consent loses the gate", func(t *testing.T) {
		walkIn := newLead("+14035550121")
		walkIn.ConsentGiven = false
		require.NoError(t, s.Create(ctx, walkIn))

		ok, err := s.TryBeginSend(ctx, walkIn.ID, models.OutcomeCompletedOffer)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLeadStore_TryBeginSendConcurrent(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	const callers = 16
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := s.TryBeginSend(ctx, lead.ID, models.OutcomeMissedOffer)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestLeadStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	a := newLead("+14035550100")
	b := newLead("+14035550101")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, err := s.Update(ctx, a.ID, func(l *models.Lead) error {
				d := n
				l.CallDuration = &d
				return nil
			})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, b.ID, func(l *models.Lead) error {
				l.OptedOut = !l.OptedOut
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	gotB, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, gotB.OptedOut, "20 toggles must cancel out")

	gotA, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotA.CallDuration)
}

func TestLeadStore_Delete(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550100")
	require.NoError(t, s.Create(ctx, lead))

	require.NoError(t, s.Delete(ctx, lead.ID))
	_, err := s.Get(ctx, lead.ID)
	assert.True(t, domain.IsNotFound(err))

	assert.True(t, domain.IsNotFound(s.Delete(ctx, lead.ID)))
}

func TestLeadStore_Upsert(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	create := func() *models.Lead { return &models.Lead{FirstName: "New", ConsentGiven: true} }
	notes := "booked"
	patch := func(l *models.Lead) { l.ScheduledNotes = &notes }

	got, created, err := s.Upsert(ctx, "+14035550100", create, patch)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "New", got.FirstName)
	assert.Equal(t, "+14035550100", got.Phone)

	got, created, err = s.Upsert(ctx, "+14035550100", create, patch)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "booked", *got.ScheduledNotes)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLeadStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewLeadStore(dir, NewPartitionLocks())
	lead := newLead("+14035550100")
	require.NoError(t, first.Create(ctx, lead))

	second := NewLeadStore(dir, NewPartitionLocks())
	got, err := second.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.Phone, got.Phone)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "no staging files may be left behind")
	}
}

func TestLeadStore_CorruptFileIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, aiLeadsFile), []byte("{not json"), 0o644))

	s := NewLeadStore(dir, NewPartitionLocks())
	_, err := s.List(context.Background())
	assert.Error(t, err)
}

func TestLeadStore_ListNewestFirst(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []string{"+14035550100", "+14035550101", "+14035550102"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.SetClock(func() time.Time { return at })
		require.NoError(t, s.Create(ctx, newLead(p)))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "+14035550102", all[0].Phone)
	assert.Equal(t, "+14035550100", all[2].Phone)
}

func TestLeadStore_CanceledContext(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Create(ctx, newLead("+14035550100"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLeadStore_Patch(t *testing.T) {
	s, _ := setupLeadStore(t)
	ctx := context.Background()

	lead := newLead("+14035550150")
	require.NoError(t, s.Create(ctx, lead))

	notes := "Moved to Thursday"
	updated, err := s.Patch(ctx, lead.ID, models.LeadPatch{ScheduledNotes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "Moved to Thursday", *updated.ScheduledNotes)
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
	assert.Equal(t, "Dana", updated.FirstName)

	_, err = s.Patch(ctx, "missing", models.LeadPatch{ScheduledNotes: &notes})
	assert.True(t, domain.IsNotFound(err))
}

func TestLeadStore_ReopenKeepsGeneratedLeads(t *testing.T) {
	s, dir := setupLeadStore(t)
	ctx := context.Background()

	leads := testdata.GenerateFreshLeads(25)
	require.NoError(t, testdata.InsertLeads(ctx, s, leads))

	reopened := NewLeadStore(dir, NewPartitionLocks())
	all, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 25)

	got, err := reopened.GetByPhone(ctx, leads[7].Phone)
	require.NoError(t, err)
	assert.Equal(t, leads[7].ID, got.ID)
	assert.Equal(t, leads[7].FirstName, got.FirstName)
}
