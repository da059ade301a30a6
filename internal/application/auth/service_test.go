package auth

import (
	"context"
	"testing"
	"time"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/testdb"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcomed []string
}

func (f *fakeMailer) SendWelcome(ctx context.Context, toEmail, name string) error {
	f.welcomed = append(f.welcomed, toEmail)
	return nil
}

func (f *fakeMailer) SendVerificationApproved(ctx context.Context, toEmail, name, cardID, publicURL string) error {
	return nil
}

func (f *fakeMailer) SendVerificationRejected(ctx context.Context, toEmail, name, notes string) error {
	return nil
}

func newService(t *testing.T) (*Service, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Service{DB: testdb.Open(t), Rdb: rdb, Events: &SessionEvents{Rdb: rdb}}, mr
}

func TestSignUp_ExporterBootstrap(t *testing.T) {
	s, _ := newService(t)
	mailer := &fakeMailer{}
	s.Mailer = mailer

	id, err := s.SignUp(context.Background(), SignUpInput{
		Email:       " Asha@Example.com ",
		Password:    "Secret#123",
		FullName:    "Asha Rao",
		CompanyName: "Acme Exports",
		Role:        "exporter",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", id.Account.Email)
	assert.NotEqual(t, "Secret#123", id.Account.PasswordHash)
	assert.Equal(t, "exporter", id.Profile.Role)
	assert.Equal(t, []string{"asha@example.com"}, mailer.welcomed)

	var exp domain.Exporter
	require.NoError(t, s.DB.Where("account_id = ?", id.Account.AccountID).First(&exp).Error)
	assert.Equal(t, "Acme Exports", exp.CompanyName)
	assert.Equal(t, domain.VerificationNone, exp.VerificationStatus)

	su := id.SessionUser()
	assert.Equal(t, id.Account.AccountID.String(), su.AccountID)
	assert.Equal(t, "exporter", su.Role)
}

func TestSignUp_Validation(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, SignUpInput{Email: "bad", Password: "Secret#123", FullName: "A"})
	assert.True(t, validation.IsError(err))

	_, err = s.SignUp(ctx, SignUpInput{Email: "a@b.com", Password: "weak", FullName: "A"})
	assert.EqualError(t, err, "Invalid password format")

	_, err = s.SignUp(ctx, SignUpInput{Email: "a@b.com", Password: "Secret#123", FullName: "A", Role: "admin"})
	assert.ErrorIs(t, err, ErrRoleNotSelfService)

	id, err := s.SignUp(ctx, SignUpInput{Email: "a@b.com", Password: "Secret#123", FullName: "A"})
	require.NoError(t, err)
	assert.Equal(t, "buyer", id.Profile.Role)

	_, err = s.SignUp(ctx, SignUpInput{Email: "A@B.com", Password: "Secret#123", FullName: "B"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, SignUpInput{Email: "a@b.com", Password: "Secret#123", FullName: "A"})
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "", "")
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
	_, err = s.SignIn(ctx, "nobody@b.com", "Secret#123")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.SignIn(ctx, "a@b.com", "Wrong#123")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	id, err := s.SignIn(ctx, "A@b.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", id.Account.Email)

	require.NoError(t, s.DB.Model(&domain.Profile{}).Where("account_id = ?", id.Account.AccountID).
		Update("status", domain.ProfileSuspended).Error)
	_, err = s.SignIn(ctx, "a@b.com", "Secret#123")
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestSignIn_RecreatesMissingProfile(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	id, err := s.SignUp(ctx, SignUpInput{Email: "a@b.com", Password: "Secret#123", FullName: "A"})
	require.NoError(t, err)
	require.NoError(t, s.DB.Where("account_id = ?", id.Account.AccountID).Delete(&domain.Profile{}).Error)

	again, err := s.SignIn(ctx, "a@b.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, "buyer", again.Profile.Role)
}

func TestSessions_StartEndDestroy(t *testing.T) {
	s, mr := newService(t)
	ctx := context.Background()
	acc := uuid.New()

	require.NoError(t, s.StartSession(ctx, acc, "sid-1"))
	require.NoError(t, s.StartSession(ctx, acc, "sid-2"))
	mr.Set(middleware.SessionRedisPrefix+"sid-1", `{"user":{}}`)
	mr.Set(middleware.SessionRedisPrefix+"sid-2", `{"user":{}}`)

	s.EndSession(ctx, acc.String(), "sid-1")
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+"sid-1"))
	members, err := mr.Members(middleware.UserSessionsPrefix + acc.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"sid-2"}, members)

	s.DestroyUserSessions(ctx, acc.String())
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+"sid-2"))
	assert.False(t, mr.Exists(middleware.UserSessionsPrefix+acc.String()))
}

func TestSessionEvents_SubscribeAndClose(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	got := make(chan SessionEvent, 4)
	sub, err := s.Events.Subscribe(ctx, func(ev SessionEvent) { got <- ev })
	require.NoError(t, err)

	acc := uuid.New()
	require.NoError(t, s.StartSession(ctx, acc, "sid-1"))
	s.DestroyUserSessions(ctx, acc.String())

	for _, want := range []string{EventSignedIn, EventInvalidated} {
		select {
		case ev := <-got:
			assert.Equal(t, want, ev.Type)
			assert.Equal(t, acc.String(), ev.AccountID)
			assert.False(t, ev.At.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}
