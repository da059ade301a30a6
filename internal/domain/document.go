package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocTypes lists the accepted exporter document kinds.
var DocTypes = []string{"gst_certificate", "iec_certificate", "invoice", "packing_list", "shipping_bill", "other"}

// Document is an uploaded compliance/trade document belonging to an exporter.
type Document struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExporterID  uuid.UUID `gorm:"column:exporter_id;type:uuid;not null;index" json:"exporter_id"`
	DocType     string    `gorm:"column:doc_type;type:varchar(32);not null" json:"doc_type"`
	FileName    string    `gorm:"column:file_name;not null" json:"file_name"`
	StoragePath string    `gorm:"column:storage_path;not null" json:"storage_path"`
	PublicURL   string    `gorm:"column:public_url;not null" json:"public_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Document) TableName() string {
	return "Documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
