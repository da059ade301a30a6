package exporters

import (
	"context"
	"errors"
	"strings"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service reads and updates exporter records. Verification fields are owned by the verification workflow.
type Service struct {
	DB *gorm.DB
}

// UpdateInput holds self-service fields; nil pointers are left unchanged.
type UpdateInput struct {
	CompanyName *string          `json:"company_name" validate:"omitempty,max=200"`
	GSTNumber   *string          `json:"gst_number" validate:"omitempty,max=15"`
	IECCode     *string          `json:"iec_code" validate:"omitempty,max=10"`
	AddressLine *string          `json:"address_line" validate:"omitempty,max=300"`
	City        *string          `json:"city" validate:"omitempty,max=100"`
	State       *string          `json:"state" validate:"omitempty,max=100"`
	Pincode     *string          `json:"pincode" validate:"omitempty,max=10"`
	Country     *string          `json:"country" validate:"omitempty,max=100"`
	Bio         *string          `json:"bio" validate:"omitempty,max=2000"`
	Website     *string          `json:"website" validate:"omitempty,url"`
	Products    []string         `json:"products"`
	Markets     []string         `json:"markets"`
	NetWorth    *decimal.Decimal `json:"net_worth"`
}

// GetByAccount returns the account's exporter, or nil when none exists yet.
func (s *Service) GetByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Exporter, error) {
	var exp domain.Exporter
	err := s.DB.WithContext(ctx).Where("account_id = ?", accountID).First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// GetByID returns the exporter or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, exporterID uuid.UUID) (*domain.Exporter, error) {
	var exp domain.Exporter
	if err := s.DB.WithContext(ctx).Where("exporter_id = ?", exporterID).First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// RequireIDForAccount resolves the account's exporter id; ErrProfileRequired when absent.
func (s *Service) RequireIDForAccount(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	exp, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return uuid.Nil, err
	}
	if exp == nil {
		return uuid.Nil, ErrProfileRequired
	}
	return exp.ExporterID, nil
}

// EnsureForAccount creates an empty exporter for the account if none exists.
func (s *Service) EnsureForAccount(ctx context.Context, accountID uuid.UUID, companyName string) (*domain.Exporter, error) {
	return EnsureForAccount(s.DB.WithContext(ctx), accountID, companyName)
}

// EnsureForAccount is the transaction-friendly form used during sign-up.
func EnsureForAccount(db *gorm.DB, accountID uuid.UUID, companyName string) (*domain.Exporter, error) {
	exp := domain.Exporter{
		AccountID:   accountID,
		CompanyName: strings.TrimSpace(companyName),
		Country:     "India",
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(&exp).Error; err != nil {
		return nil, err
	}
	var out domain.Exporter
	if err := db.Where("account_id = ?", accountID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOwn applies self-service fields to the caller's exporter, creating it when missing.
func (s *Service) UpdateOwn(ctx context.Context, accountID uuid.UUID, in UpdateInput) (*domain.Exporter, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	upd := map[string]interface{}{}
	setStr := func(col string, v *string, upper bool) {
		if v == nil {
			return
		}
		str := strings.TrimSpace(*v)
		if upper {
			str = strings.ToUpper(str)
		}
		upd[col] = str
	}
	setStr("company_name", in.CompanyName, false)
	setStr("gst_number", in.GSTNumber, true)
	setStr("iec_code", in.IECCode, true)
	setStr("address_line", in.AddressLine, false)
	setStr("city", in.City, false)
	setStr("state", in.State, false)
	setStr("pincode", in.Pincode, false)
	setStr("country", in.Country, false)
	setStr("bio", in.Bio, false)
	setStr("website", in.Website, false)
	if in.Products != nil {
		upd["products"] = domainSlice(in.Products)
	}
	if in.Markets != nil {
		upd["markets"] = domainSlice(in.Markets)
	}
	if in.NetWorth != nil {
		upd["net_worth"] = decimal.NewNullDecimal(*in.NetWorth)
	}
	if len(upd) == 0 {
		return nil, ErrNoValidFields
	}

	var out domain.Exporter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exp, err := EnsureForAccount(tx, accountID, "")
		if err != nil {
			return err
		}
		if exp.VerificationStatus == domain.VerificationApproved {
			if v, ok := upd["company_name"]; ok && v != exp.CompanyName {
				return ErrLockedWhenVerified
			}
			if v, ok := upd["gst_number"]; ok && v != exp.GSTNumber {
				return ErrLockedWhenVerified
			}
		}
		if err := tx.Model(&domain.Exporter{}).Where("exporter_id = ?", exp.ExporterID).Updates(upd).Error; err != nil {
			return err
		}
		return tx.Where("exporter_id = ?", exp.ExporterID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
