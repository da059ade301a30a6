package shipments

import (
	"context"
	"testing"
	"time"

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
	_, err := exp.EnsureForAccount(context.Background(), acc, "Acme")
	require.NoError(t, err)
	return &Service{
		DB:        db,
		Exporters: exp,
		Now:       func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	}, acc
}

func TestShipmentLifecycle(t *testing.T) {
	s, acc := newService(t)
	ctx := context.Background()

	sh, err := s.Create(ctx, acc, Input{Reference: "BL-2026-0042", DestinationCountry: "UAE", Port: "Nhava Sheva"})
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentBooked, sh.Status)
	assert.Nil(t, sh.ShippedAt)

	_, err = s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	moving, err := s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentInTransit)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentInTransit, moving.Status)
	require.NotNil(t, moving.ShippedAt)
	assert.Equal(t, 2026, moving.ShippedAt.Year())

	done, err := s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentDelivered, done.Status)

	_, err = s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentBooked)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.UpdateStatus(ctx, acc, uuid.New(), domain.ShipmentCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelFromBooked(t *testing.T) {
	s, acc := newService(t)
	ctx := context.Background()
	sh, err := s.Create(ctx, acc, Input{Reference: "BL-1", DestinationCountry: "Germany"})
	require.NoError(t, err)
	out, err := s.UpdateStatus(ctx, acc, sh.ID, domain.ShipmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentCancelled, out.Status)
}

func TestCreateValidationAndList(t *testing.T) {
	s, acc := newService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, acc, Input{Reference: "BL-1"})
	assert.True(t, validation.IsError(err))

	for _, ref := range []string{"BL-1", "BL-2"} {
		_, err := s.Create(ctx, acc, Input{Reference: ref, DestinationCountry: "UK"})
		require.NoError(t, err)
	}
	list, err := s.List(ctx, acc)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
