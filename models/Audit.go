package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ActorID      uint           `json:"actorID" gorm:"index;not null"`
	Action       string         `json:"action" gorm:"size:64;index"`
	ResourceType string         `json:"resourceType" gorm:"size:64;index"`
	ResourceID   uint           `json:"resourceID" gorm:"index"`
	Details      datatypes.JSON `json:"details"`
	IPAddress    string         `json:"ipAddress" gorm:"size:64"`
	CreatedAt    time.Time      `json:"createdAt"`
}
