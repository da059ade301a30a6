package products

import (
	"context"
	"errors"
	"strings"

	"hindtrade-backend/internal/domain"
	"hindtrade-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("Product not found")
	ErrInvalidTransition = errors.New("Enhancement cannot change from its current state")
	ErrInvalidStatus     = errors.New("Invalid enhancement status")
)

// ExporterResolver maps an account to its exporter id (exporters.Service).
type ExporterResolver interface {
	RequireIDForAccount(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

// Service manages an exporter's product catalogue.
type Service struct {
	DB        *gorm.DB
	Exporters ExporterResolver
}

// Input is the create/update body.
type Input struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	ExternalLink string `json:"external_link" validate:"omitempty,url"`
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ExternalLink = strings.TrimSpace(in.ExternalLink)
	return validation.Struct(in)
}

// Create adds a product for the account's exporter.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, in Input) (*domain.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ExporterID:        exporterID,
		Name:              in.Name,
		Description:       in.Description,
		ImageURL:          in.ImageURL,
		ExternalLink:      in.ExternalLink,
		EnhancementStatus: domain.EnhancementNone,
	}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the account's products, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]domain.Product, error) {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var list []domain.Product
	if err := s.DB.WithContext(ctx).Where("exporter_id = ?", exporterID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Update replaces the editable fields of an owned product.
func (s *Service) Update(ctx context.Context, accountID, productID uuid.UUID, in Input) (*domain.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND exporter_id = ?", productID, exporterID).
		Updates(map[string]interface{}{
			"name":          in.Name,
			"description":   in.Description,
			"image_url":     in.ImageURL,
			"external_link": in.ExternalLink,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.get(ctx, productID)
}

// Delete removes an owned product.
func (s *Service) Delete(ctx context.Context, accountID, productID uuid.UUID) error {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("id = ? AND exporter_id = ?", productID, exporterID).Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RequestEnhancement asks for an enhanced image. Allowed from none or delivered.
func (s *Service) RequestEnhancement(ctx context.Context, accountID, productID uuid.UUID) (*domain.Product, error) {
	exporterID, err := s.Exporters.RequireIDForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND exporter_id = ? AND enhancement_status IN ?", productID, exporterID,
			[]string{domain.EnhancementNone, domain.EnhancementDelivered}).
		Update("enhancement_status", domain.EnhancementRequested)
	if err := s.resolveTransition(ctx, res, "id = ? AND exporter_id = ?", productID, exporterID); err != nil {
		return nil, err
	}
	return s.get(ctx, productID)
}

// DeliverEnhancement completes a requested enhancement, optionally replacing the image.
func (s *Service) DeliverEnhancement(ctx context.Context, actorID, productID uuid.UUID, imageURL string) (*domain.Product, error) {
	upd := map[string]interface{}{"enhancement_status": domain.EnhancementDelivered}
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		upd["image_url"] = imageURL
	}
	var out *domain.Product
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND enhancement_status = ?", productID, domain.EnhancementRequested).
			Updates(upd)
		if err := resolveTransition(tx, res, "id = ?", productID); err != nil {
			return err
		}
		var p domain.Product
		if err := tx.Where("id = ?", productID).First(&p).Error; err != nil {
			return err
		}
		out = &p
		audit := domain.NewAuditLog(actorID, "product.enhancement_delivered", "product", productID,
			map[string]string{"enhancement_status": domain.EnhancementRequested}, upd)
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByEnhancementStatus is the admin queue of products, oldest first.
func (s *Service) ListByEnhancementStatus(ctx context.Context, status string) ([]domain.Product, error) {
	if status == "" {
		status = domain.EnhancementRequested
	}
	switch status {
	case domain.EnhancementNone, domain.EnhancementRequested, domain.EnhancementDelivered:
	default:
		return nil, ErrInvalidStatus
	}
	var list []domain.Product
	if err := s.DB.WithContext(ctx).Where("enhancement_status = ?", status).Order("updated_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) get(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	if err := s.DB.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) resolveTransition(ctx context.Context, res *gorm.DB, query string, args ...interface{}) error {
	return resolveTransition(s.DB.WithContext(ctx), res, query, args...)
}

// resolveTransition turns a zero-row conditional update into ErrNotFound or ErrInvalidTransition.
func resolveTransition(db *gorm.DB, res *gorm.DB, query string, args ...interface{}) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := db.Model(&domain.Product{}).Where(query, args...).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInvalidTransition
}
