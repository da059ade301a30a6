package auth

import (
	"context"
	"errors"
	"strings"

	"hindtrade-backend/internal/application/emails"
	"hindtrade-backend/internal/application/exporters"
	"hindtrade-backend/internal/application/profiles"
	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/middleware"
	"hindtrade-backend/internal/pkg/constants"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service is the identity store: accounts, credentials and session bookkeeping.
type Service struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Events *SessionEvents
	Mailer emails.Sender // optional
}

// SignUpInput is the sign-up request body.
type SignUpInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
	FullName    string `json:"full_name" validate:"required,max=120"`
	CompanyName string `json:"company_name" validate:"max=200"`
	Role        string `json:"role" validate:"omitempty,oneof=exporter buyer ca cha admin"`
}

// Identity is an account together with its profile.
type Identity struct {
	Account *domain.Account
	Profile *domain.Profile
}

// SignUp creates the account and its profile. Exporters also get an empty exporter record.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Identity, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = constants.Buyer
	}
	if !constants.IsSelfServiceRole(in.Role) {
		return nil, ErrRoleNotSelfService
	}

	var existing domain.Account
	if err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	out := &Identity{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc := &domain.Account{Email: in.Email, PasswordHash: string(hash)}
		if err := tx.Create(acc).Error; err != nil {
			return err
		}
		prof, err := profiles.Ensure(tx, acc.AccountID, domain.Profile{
			FullName:    in.FullName,
			CompanyName: strings.TrimSpace(in.CompanyName),
			Role:        in.Role,
		})
		if err != nil {
			return err
		}
		if in.Role == constants.Exporter {
			if _, err := exporters.EnsureForAccount(tx, acc.AccountID, in.CompanyName); err != nil {
				return err
			}
		}
		out.Account, out.Profile = acc, prof
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendWelcome(ctx, in.Email, in.FullName); err != nil {
			log.Warn().Err(err).Str("account_id", out.Account.AccountID.String()).Msg("auth: welcome email failed")
		}
	}
	return out, nil
}

// SignIn checks credentials and returns the identity. Missing profiles are recreated.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var acc domain.Account
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if acc.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	prof, err := profiles.Ensure(s.DB.WithContext(ctx), acc.AccountID, domain.Profile{})
	if err != nil {
		return nil, err
	}
	if prof.Status == domain.ProfileSuspended {
		return nil, ErrAccountSuspended
	}
	return &Identity{Account: &acc, Profile: prof}, nil
}

// SessionUser is the session payload for an identity.
func (id *Identity) SessionUser() middleware.SessionUser {
	return middleware.SessionUser{
		AccountID: id.Account.AccountID.String(),
		FullName:  id.Profile.FullName,
		Email:     id.Account.Email,
		Role:      id.Profile.Role,
	}
}

// StartSession records sessionID under the account and announces the sign-in.
func (s *Service) StartSession(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	if err := s.Rdb.SAdd(ctx, middleware.UserSessionsPrefix+accountID.String(), sessionID).Err(); err != nil {
		return err
	}
	s.publish(ctx, SessionEvent{Type: EventSignedIn, AccountID: accountID.String(), SessionID: sessionID})
	return nil
}

// EndSession removes one session and announces the sign-out.
func (s *Service) EndSession(ctx context.Context, accountID, sessionID string) {
	if sessionID == "" {
		return
	}
	if accountID != "" {
		_ = s.Rdb.SRem(ctx, middleware.UserSessionsPrefix+accountID, sessionID).Err()
	}
	_ = s.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	if accountID != "" {
		s.publish(ctx, SessionEvent{Type: EventSignedOut, AccountID: accountID, SessionID: sessionID})
	}
}

// DestroyUserSessions deletes every session of the account (role change, suspension).
func (s *Service) DestroyUserSessions(ctx context.Context, accountID string) {
	if accountID == "" {
		return
	}
	key := middleware.UserSessionsPrefix + accountID
	sessionIDs, err := s.Rdb.SMembers(ctx, key).Result()
	if err == nil {
		for _, sid := range sessionIDs {
			s.Rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
		}
	}
	s.Rdb.Del(ctx, key)
	s.publish(ctx, SessionEvent{Type: EventInvalidated, AccountID: accountID})
}

func (s *Service) publish(ctx context.Context, ev SessionEvent) {
	if err := s.Events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("auth: session event publish failed")
	}
}
