package products

import (
	"context"
	"testing"

	"hindtrade-backend/internal/application/exporters"
	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/testdb"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, uuid.UUID) {
	db := testdb.Open(t)
	exp := &exporters.Service{DB: db}
	acc := uuid.New()
	_, err := exp.EnsureForAccount(context.Background(), acc, "Acme Exports")
	require.NoError(t, err)
	return &Service{DB: db, Exporters: exp}, acc
}

func TestCRUD_OwnerScoped(t *testing.T) {
	s, acc := newService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, acc, Input{Name: " Basmati Rice ", Description: "1121 Sella", ImageURL: "https://cdn.example/rice.png"})
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", p.Name)
	assert.Equal(t, domain.EnhancementNone, p.EnhancementStatus)

	_, err = s.Create(ctx, acc, Input{Name: ""})
	assert.True(t, validation.IsError(err))
	_, err = s.Create(ctx, acc, Input{Name: "x", ImageURL: "not a url"})
	assert.True(t, validation.IsError(err))

	list, err := s.List(ctx, acc)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	up, err := s.Update(ctx, acc, p.ID, Input{Name: "Basmati Rice 1121"})
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice 1121", up.Name)
	assert.Empty(t, up.ImageURL)

	other := uuid.New()
	_, err = (&exporters.Service{DB: s.DB}).EnsureForAccount(ctx, other, "Other")
	require.NoError(t, err)
	_, err = s.Update(ctx, other, p.ID, Input{Name: "stolen"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, other, p.ID), ErrNotFound)

	require.NoError(t, s.Delete(ctx, acc, p.ID))
	assert.ErrorIs(t, s.Delete(ctx, acc, p.ID), ErrNotFound)
}

func TestNoExporterProfile(t *testing.T) {
	s, _ := newService(t)
	_, err := s.List(context.Background(), uuid.New())
	assert.ErrorIs(t, err, exporters.ErrProfileRequired)
}

func TestEnhancementLifecycle(t *testing.T) {
	s, acc := newService(t)
	ctx := context.Background()
	admin := uuid.New()
	p, err := s.Create(ctx, acc, Input{Name: "Turmeric"})
	require.NoError(t, err)

	_, err = s.DeliverEnhancement(ctx, admin, p.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	p2, err := s.RequestEnhancement(ctx, acc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementRequested, p2.EnhancementStatus)

	_, err = s.RequestEnhancement(ctx, acc, p.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	queue, err := s.ListByEnhancementStatus(ctx, "")
	require.NoError(t, err)
	require.Len(t, queue, 1)

	p3, err := s.DeliverEnhancement(ctx, admin, p.ID, "https://cdn.example/turmeric-hd.png")
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementDelivered, p3.EnhancementStatus)
	assert.Equal(t, "https://cdn.example/turmeric-hd.png", p3.ImageURL)

	p4, err := s.RequestEnhancement(ctx, acc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementRequested, p4.EnhancementStatus)

	_, err = s.DeliverEnhancement(ctx, admin, uuid.New(), "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ListByEnhancementStatus(ctx, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
