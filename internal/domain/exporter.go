package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exporter verification states.
const (
	VerificationNone     = "none"
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Exporter is the business entity behind an exporter account.
type Exporter struct {
	ExporterID         uuid.UUID                   `gorm:"column:exporter_id;type:uuid;primaryKey" json:"exporter_id"`
	AccountID          uuid.UUID                   `gorm:"column:account_id;type:uuid;not null;uniqueIndex" json:"account_id"`
	CompanyName        string                      `gorm:"column:company_name" json:"company_name"`
	GSTNumber          string                      `gorm:"column:gst_number" json:"gst_number"`
	IECCode            string                      `gorm:"column:iec_code" json:"iec_code"`
	AddressLine        string                      `gorm:"column:address_line" json:"address_line"`
	City               string                      `gorm:"column:city" json:"city"`
	State              string                      `gorm:"column:state" json:"state"`
	Pincode            string                      `gorm:"column:pincode" json:"pincode"`
	Country            string                      `gorm:"column:country;default:'India'" json:"country"`
	Verified           bool                        `gorm:"column:verified;not null;default:false" json:"verified"`
	VerificationStatus string                      `gorm:"column:verification_status;type:varchar(20);not null;default:'none'" json:"verification_status"`
	TrustScore         int                         `gorm:"column:trust_score;not null;default:0" json:"trust_score"`
	NetWorth           decimal.NullDecimal         `gorm:"column:net_worth;type:numeric(18,2)" json:"net_worth"`
	Bio                string                      `gorm:"column:bio" json:"bio"`
	Products           datatypes.JSONSlice[string] `gorm:"column:products" json:"products"`
	Markets            datatypes.JSONSlice[string] `gorm:"column:markets" json:"markets"`
	Website            string                      `gorm:"column:website" json:"website"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (Exporter) TableName() string {
	return "Exporters"
}

func (e *Exporter) BeforeCreate(tx *gorm.DB) error {
	if e.ExporterID == uuid.Nil {
		e.ExporterID = uuid.New()
	}
	if e.VerificationStatus == "" {
		e.VerificationStatus = VerificationNone
	}
	return nil
}

// ExporterPublic is the subset of exporter fields shown to reviewers and on public trade cards.
type ExporterPublic struct {
	ExporterID         uuid.UUID `json:"exporter_id"`
	CompanyName        string    `json:"company_name"`
	GSTNumber          string    `json:"gst_number"`
	IECCode            string    `json:"iec_code"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	Country            string    `json:"country"`
	TrustScore         int       `json:"trust_score"`
	VerificationStatus string    `json:"verification_status"`
}

// Public projects an exporter onto its public fields.
func (e *Exporter) Public() ExporterPublic {
	return ExporterPublic{
		ExporterID:         e.ExporterID,
		CompanyName:        e.CompanyName,
		GSTNumber:          e.GSTNumber,
		IECCode:            e.IECCode,
		City:               e.City,
		State:              e.State,
		Country:            e.Country,
		TrustScore:         e.TrustScore,
		VerificationStatus: e.VerificationStatus,
	}
}
