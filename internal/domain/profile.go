package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProfileActive    = "active"
	ProfileSuspended = "suspended"
)

// Profile is one row per account: contact/company attributes, role tag and counters.
type Profile struct {
	AccountID   uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	FullName    string    `gorm:"column:full_name" json:"full_name"`
	CompanyName string    `gorm:"column:company_name" json:"company_name"`
	Phone       string    `gorm:"column:phone" json:"phone"`
	Role        string    `gorm:"column:role;type:varchar(20);not null;default:'buyer'" json:"role"`
	Credits     int       `gorm:"column:credits;not null;default:0" json:"credits"`
	TrustScore  int       `gorm:"column:trust_score;not null;default:0" json:"trust_score"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "Profiles"
}
