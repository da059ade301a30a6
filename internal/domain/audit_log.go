package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records admin/reviewer actions with before/after snapshots.
type AuditLog struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ActorID      uuid.UUID      `gorm:"column:actor_id;type:uuid;not null;index" json:"actor_id"`
	Action       string         `gorm:"column:action;not null" json:"action"`
	ResourceType string         `gorm:"column:resource_type;not null" json:"resource_type"`
	ResourceID   uuid.UUID      `gorm:"column:resource_id;type:uuid;not null;index" json:"resource_id"`
	Before       datatypes.JSON `gorm:"column:before" json:"before"`
	After        datatypes.JSON `gorm:"column:after" json:"after"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "AuditLogs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewAuditLog marshals before/after snapshots; nil snapshots are stored as JSON null.
func NewAuditLog(actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, before, after interface{}) AuditLog {
	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)
	return AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       datatypes.JSON(b),
		After:        datatypes.JSON(a),
	}
}
