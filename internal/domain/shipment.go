package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ShipmentBooked    = "booked"
	ShipmentInTransit = "in_transit"
	ShipmentDelivered = "delivered"
	ShipmentCancelled = "cancelled"
)

// ShipmentLog records one outbound shipment for an exporter.
type ShipmentLog struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExporterID         uuid.UUID  `gorm:"column:exporter_id;type:uuid;not null;index" json:"exporter_id"`
	Reference          string     `gorm:"column:reference;not null" json:"reference"`
	DestinationCountry string     `gorm:"column:destination_country;not null" json:"destination_country"`
	Port               string     `gorm:"column:port" json:"port"`
	Status             string     `gorm:"column:status;type:varchar(20);not null;default:'booked'" json:"status"`
	ShippedAt          *time.Time `gorm:"column:shipped_at" json:"shipped_at"`
	Notes              string     `gorm:"column:notes" json:"notes"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (ShipmentLog) TableName() string {
	return "ShipmentLogs"
}

func (s *ShipmentLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ShipmentBooked
	}
	return nil
}
