package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/constants"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionDestroyer ends every session of an account (implemented by auth.Service).
type SessionDestroyer interface {
	DestroyUserSessions(ctx context.Context, accountID string)
}

// Service holds DB and session invalidation for profile operations.
type Service struct {
	DB       *gorm.DB
	Sessions SessionDestroyer
}

var ownFields = map[string]int{
	"full_name":    120,
	"company_name": 200,
	"phone":        20,
}

// Ensure creates the profile if absent and returns the stored row. Safe to call repeatedly.
func (s *Service) Ensure(ctx context.Context, accountID uuid.UUID, defaults domain.Profile) (*domain.Profile, error) {
	return Ensure(s.DB.WithContext(ctx), accountID, defaults)
}

// Ensure is the transaction-friendly form used during sign-up.
func Ensure(db *gorm.DB, accountID uuid.UUID, defaults domain.Profile) (*domain.Profile, error) {
	p := defaults
	p.AccountID = accountID
	if p.Role == "" {
		p.Role = constants.Buyer
	}
	if p.Status == "" {
		p.Status = domain.ProfileActive
	}
	p.TrustScore = domain.ClampTrustScore(p.TrustScore)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return nil, err
	}
	var out domain.Profile
	if err := db.Where("account_id = ?", accountID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the profile for accountID.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	if err := s.DB.WithContext(ctx).Where("account_id = ?", accountID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateOwn applies self-service fields (full_name, company_name, phone); others are ignored.
func (s *Service) UpdateOwn(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) (*domain.Profile, error) {
	upd := make(map[string]interface{})
	for k, v := range fields {
		max, ok := ownFields[k]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, &validation.Error{Message: k + " must be a string"}
		}
		str = strings.TrimSpace(str)
		if k == "full_name" && str == "" {
			return nil, &validation.Error{Message: "Full name must be a non-empty string"}
		}
		if len([]rune(str)) > max {
			return nil, &validation.Error{Message: fmt.Sprintf("%s must be at most %d characters", k, max)}
		}
		upd[k] = str
	}
	if len(upd) == 0 {
		return nil, ErrNoValidFields
	}

	res := s.DB.WithContext(ctx).Model(&domain.Profile{}).Where("account_id = ?", accountID).Updates(upd)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, accountID)
}

// SetStatus activates or suspends an account. Suspension ends all of its sessions.
func (s *Service) SetStatus(ctx context.Context, actorID, accountID uuid.UUID, status string) (*domain.Profile, error) {
	if status != domain.ProfileActive && status != domain.ProfileSuspended {
		return nil, ErrInvalidStatus
	}
	if actorID == accountID {
		return nil, ErrSelfChange
	}
	p, err := s.update(ctx, actorID, accountID, "profile.status", map[string]interface{}{"status": status})
	if err != nil {
		return nil, err
	}
	if status == domain.ProfileSuspended && s.Sessions != nil {
		s.Sessions.DestroyUserSessions(ctx, accountID.String())
	}
	return p, nil
}

// SetRole assigns any role. Sessions are destroyed so the new role applies on next sign-in.
func (s *Service) SetRole(ctx context.Context, actorID, accountID uuid.UUID, role string) (*domain.Profile, error) {
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if actorID == accountID {
		return nil, ErrSelfChange
	}
	p, err := s.update(ctx, actorID, accountID, "profile.role", map[string]interface{}{"role": role})
	if err != nil {
		return nil, err
	}
	if role == constants.Exporter {
		exp := domain.Exporter{AccountID: accountID, CompanyName: p.CompanyName, Country: "India"}
		if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoNothing: true,
		}).Create(&exp).Error; err != nil {
			return nil, err
		}
	}
	if s.Sessions != nil {
		s.Sessions.DestroyUserSessions(ctx, accountID.String())
	}
	return p, nil
}

// update applies upd and writes an audit row in one transaction.
func (s *Service) update(ctx context.Context, actorID, accountID uuid.UUID, action string, upd map[string]interface{}) (*domain.Profile, error) {
	var out domain.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before domain.Profile
		if err := tx.Where("account_id = ?", accountID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&domain.Profile{}).Where("account_id = ?", accountID).Updates(upd).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", accountID).First(&out).Error; err != nil {
			return err
		}
		audit := domain.NewAuditLog(actorID, action, "profile", accountID, before, out)
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustCredits adds delta (may be negative). The balance never drops below zero.
func (s *Service) AdjustCredits(ctx context.Context, actorID, accountID uuid.UUID, delta int) (*domain.Profile, error) {
	var out domain.Profile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Profile{}).
			Where("account_id = ? AND credits + ? >= 0", accountID, delta).
			Update("credits", gorm.Expr("credits + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.Profile{}).Where("account_id = ?", accountID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrInsufficientCredits
		}
		if err := tx.Where("account_id = ?", accountID).First(&out).Error; err != nil {
			return err
		}
		audit := domain.NewAuditLog(actorID, "profile.credits", "profile", accountID,
			map[string]int{"credits": out.Credits - delta},
			map[string]int{"credits": out.Credits, "delta": delta})
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns profiles, optionally filtered by role, newest first.
func (s *Service) List(ctx context.Context, role string) ([]domain.Profile, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Profile{})
	if role != "" {
		if !constants.IsValidRole(role) {
			return nil, ErrInvalidRole
		}
		q = q.Where("role = ?", role)
	}
	var list []domain.Profile
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
