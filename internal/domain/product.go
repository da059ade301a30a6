package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnhancementNone      = "none"
	EnhancementRequested = "requested"
	EnhancementDelivered = "delivered"
)

// Product is an inventory item owned by an exporter. Independent of verification state.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExporterID        uuid.UUID `gorm:"column:exporter_id;type:uuid;not null;index" json:"exporter_id"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	Description       string    `gorm:"column:description" json:"description"`
	ImageURL          string    `gorm:"column:image_url" json:"image_url"`
	EnhancementStatus string    `gorm:"column:enhancement_status;type:varchar(20);not null;default:'none'" json:"enhancement_status"`
	ExternalLink      string    `gorm:"column:external_link" json:"external_link"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "Products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.EnhancementStatus == "" {
		p.EnhancementStatus = EnhancementNone
	}
	return nil
}
