package store

import (
	"context"
	"testing"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactStore(t *testing.T) {
	locks := NewPartitionLocks()
	dir := t.TempDir()
	s := NewContactStore(dir, locks)
	ctx := context.Background()

	c := &models.ContactLead{Name: "Sam", Email: "sam@example.com", Message: "hello"}
	require.NoError(t, s.Create(ctx, c))
	assert.NotEmpty(t, c.ID)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)

	_, err = s.Get(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	t.Run("partitions are independent files", func(t *testing.T) {
		leads := NewLeadStore(dir, locks)
		list, err := leads.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
