package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TradeCard is the shareable credential minted when an exporter is approved.
type TradeCard struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExporterID uuid.UUID `gorm:"column:exporter_id;type:uuid;not null;index;uniqueIndex:idx_trade_cards_one_active,where:is_active = true" json:"exporter_id"`
	CardID     string    `gorm:"column:card_id;type:varchar(32);not null;uniqueIndex" json:"card_id"`
	TrustScore int       `gorm:"column:trust_score;not null" json:"trust_score"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	PublicURL  string    `gorm:"column:public_url;not null" json:"public_url"`
	QRCodeURL  string    `gorm:"column:qr_code_url;not null" json:"qr_code_url"`
	IssuedAt   time.Time `gorm:"column:issued_at;not null" json:"issued_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (TradeCard) TableName() string {
	return "TradeCards"
}

func (t *TradeCard) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
