package tradecards

import (
	"context"
	"errors"
	"time"

	"hindtrade-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("Trade card not found")

// ImageFetcher fetches and caches QR images (qrcode.Client).
type ImageFetcher interface {
	Image(ctx context.Context, key, imageURL string) ([]byte, error)
}

// Service reads issued trade cards.
type Service struct {
	DB *gorm.DB
	QR ImageFetcher
}

// PublicExporter is what a public trade card shows about its exporter.
type PublicExporter struct {
	domain.ExporterPublic
	Bio      string                      `json:"bio"`
	Products datatypes.JSONSlice[string] `json:"products"`
	Markets  datatypes.JSONSlice[string] `json:"markets"`
	Website  string                      `json:"website"`
}

// PublicCard is the unauthenticated view of an active trade card.
type PublicCard struct {
	CardID     string         `json:"card_id"`
	TrustScore int            `json:"trust_score"`
	IsActive   bool           `json:"is_active"`
	PublicURL  string         `json:"public_url"`
	QRCodeURL  string         `json:"qr_code_url"`
	IssuedAt   time.Time      `json:"issued_at"`
	Exporter   PublicExporter `json:"exporter"`
}

func (s *Service) activeCard(ctx context.Context, cardID string) (*domain.TradeCard, error) {
	var card domain.TradeCard
	err := s.DB.WithContext(ctx).Where("card_id = ? AND is_active = ?", cardID, true).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetPublic returns the active card with its exporter's public fields.
func (s *Service) GetPublic(ctx context.Context, cardID string) (*PublicCard, error) {
	card, err := s.activeCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	var exp domain.Exporter
	if err := s.DB.WithContext(ctx).Where("exporter_id = ?", card.ExporterID).First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &PublicCard{
		CardID:     card.CardID,
		TrustScore: card.TrustScore,
		IsActive:   card.IsActive,
		PublicURL:  card.PublicURL,
		QRCodeURL:  card.QRCodeURL,
		IssuedAt:   card.IssuedAt,
		Exporter: PublicExporter{
			ExporterPublic: exp.Public(),
			Bio:            exp.Bio,
			Products:       exp.Products,
			Markets:        exp.Markets,
			Website:        exp.Website,
		},
	}, nil
}

// GetForAccount returns the account's active card, or nil.
func (s *Service) GetForAccount(ctx context.Context, accountID uuid.UUID) (*domain.TradeCard, error) {
	var card domain.TradeCard
	owned := s.DB.WithContext(ctx).Model(&domain.Exporter{}).Select("exporter_id").Where("account_id = ?", accountID)
	err := s.DB.WithContext(ctx).
		Where("exporter_id IN (?) AND is_active = ?", owned, true).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// QRImage returns the QR PNG for an active card.
func (s *Service) QRImage(ctx context.Context, cardID string) ([]byte, error) {
	card, err := s.activeCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return s.QR.Image(ctx, card.CardID, card.QRCodeURL)
}
