package profiles

import (
	"context"
	"testing"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	destroyed []string
}

func (f *fakeSessions) DestroyUserSessions(ctx context.Context, accountID string) {
	f.destroyed = append(f.destroyed, accountID)
}

func newService(t *testing.T) (*Service, *fakeSessions) {
	fs := &fakeSessions{}
	return &Service{DB: testdb.Open(t), Sessions: fs}, fs
}

func TestEnsure_Idempotent(t *testing.T) {
	s, _ := newService(t)
	id := uuid.New()
	ctx := context.Background()

	p1, err := s.Ensure(ctx, id, domain.Profile{FullName: "Asha Rao", Role: "exporter"})
	require.NoError(t, err)
	assert.Equal(t, "exporter", p1.Role)
	assert.Equal(t, domain.ProfileActive, p1.Status)

	p2, err := s.Ensure(ctx, id, domain.Profile{FullName: "Someone Else", Role: "buyer"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p2.FullName)
	assert.Equal(t, "exporter", p2.Role)

	var n int64
	require.NoError(t, s.DB.Model(&domain.Profile{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUpdateOwn_OnlySelfServiceFields(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	id := uuid.New()
	_, err := s.Ensure(ctx, id, domain.Profile{FullName: "Asha", Role: "buyer"})
	require.NoError(t, err)

	p, err := s.UpdateOwn(ctx, id, map[string]interface{}{
		"full_name": "  Asha Rao ",
		"phone":     "+91 98200 00000",
		"role":      "admin",
		"credits":   1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p.FullName)
	assert.Equal(t, "+91 98200 00000", p.Phone)
	assert.Equal(t, "buyer", p.Role)
	assert.Equal(t, 0, p.Credits)

	_, err = s.UpdateOwn(ctx, id, map[string]interface{}{"role": "admin"})
	assert.ErrorIs(t, err, ErrNoValidFields)
	_, err = s.UpdateOwn(ctx, id, map[string]interface{}{"full_name": " "})
	assert.Error(t, err)
	_, err = s.UpdateOwn(ctx, uuid.New(), map[string]interface{}{"phone": "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus_SuspendDestroysSessions(t *testing.T) {
	s, fs := newService(t)
	ctx := context.Background()
	admin, target := uuid.New(), uuid.New()
	_, err := s.Ensure(ctx, target, domain.Profile{FullName: "T"})
	require.NoError(t, err)

	p, err := s.SetStatus(ctx, admin, target, domain.ProfileSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileSuspended, p.Status)
	assert.Equal(t, []string{target.String()}, fs.destroyed)

	_, err = s.SetStatus(ctx, admin, target, "banned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.SetStatus(ctx, admin, admin, domain.ProfileActive)
	assert.ErrorIs(t, err, ErrSelfChange)
	_, err = s.SetStatus(ctx, admin, uuid.New(), domain.ProfileActive)
	assert.ErrorIs(t, err, ErrNotFound)

	var audits int64
	require.NoError(t, s.DB.Model(&domain.AuditLog{}).Where("action = ?", "profile.status").Count(&audits).Error)
	assert.EqualValues(t, 1, audits)
}

func TestSetRole_ExporterBootstrapsExporter(t *testing.T) {
	s, fs := newService(t)
	ctx := context.Background()
	admin, target := uuid.New(), uuid.New()
	_, err := s.Ensure(ctx, target, domain.Profile{FullName: "T", CompanyName: "Spice Route LLP"})
	require.NoError(t, err)

	p, err := s.SetRole(ctx, admin, target, "exporter")
	require.NoError(t, err)
	assert.Equal(t, "exporter", p.Role)
	assert.Len(t, fs.destroyed, 1)

	var exp domain.Exporter
	require.NoError(t, s.DB.Where("account_id = ?", target).First(&exp).Error)
	assert.Equal(t, "Spice Route LLP", exp.CompanyName)
	assert.Equal(t, domain.VerificationNone, exp.VerificationStatus)

	_, err = s.SetRole(ctx, admin, target, "exporter")
	require.NoError(t, err)
	var n int64
	require.NoError(t, s.DB.Model(&domain.Exporter{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = s.SetRole(ctx, admin, target, "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdjustCredits_NeverNegative(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	admin, target := uuid.New(), uuid.New()
	_, err := s.Ensure(ctx, target, domain.Profile{FullName: "T"})
	require.NoError(t, err)

	p, err := s.AdjustCredits(ctx, admin, target, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Credits)

	p, err = s.AdjustCredits(ctx, admin, target, -20)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Credits)

	_, err = s.AdjustCredits(ctx, admin, target, -31)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	got, err := s.Get(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Credits)

	_, err = s.AdjustCredits(ctx, admin, uuid.New(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FilterByRole(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	for _, role := range []string{"buyer", "exporter", "exporter", "ca"} {
		_, err := s.Ensure(ctx, uuid.New(), domain.Profile{FullName: "x", Role: role})
		require.NoError(t, err)
	}
	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	exporters, err := s.List(ctx, "exporter")
	require.NoError(t, err)
	assert.Len(t, exporters, 2)

	_, err = s.List(ctx, "pirate")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
