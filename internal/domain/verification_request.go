package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationRequest is one verification attempt for an exporter. Ownership resolves through
// Exporter.AccountID; the account is never copied onto the request.
type VerificationRequest struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ExporterID  uuid.UUID  `gorm:"column:exporter_id;type:uuid;not null;index;uniqueIndex:idx_verification_one_pending,where:status = 'pending'" json:"exporter_id"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	ReviewerID  *uuid.UUID `gorm:"column:reviewer_id;type:uuid" json:"reviewer_id"`
	Notes       string     `gorm:"column:notes" json:"notes"`
	SubmittedAt time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (VerificationRequest) TableName() string {
	return "VerificationRequests"
}

func (v *VerificationRequest) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = VerificationPending
	}
	return nil
}

// Decided reports whether the request reached a terminal state.
func (v *VerificationRequest) Decided() bool {
	return v.Status == VerificationApproved || v.Status == VerificationRejected
}
