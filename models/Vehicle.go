package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	VehicleStatusPending   = "pending"
	VehicleStatusActive    = "active"
	VehicleStatusInactive  = "inactive"
	VehicleStatusSuspended = "suspended"
)

// Vehicle is a rentable car listed by a host. Its listing workflow
// (pending -> active, suspension) is driven by admin tooling.
type Vehicle struct {
	// gorm.Model fields, spelled out because the embedded name would
	// collide with the Model field below.
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt  `gorm:"index"`
	HostID    uint            `json:"hostID" gorm:"not null;index"`
	Title     string          `json:"title"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Plate     string          `json:"plate" gorm:"size:32"`
	DailyRate decimal.Decimal `json:"dailyRate" gorm:"type:numeric(12,2);not null;default:0"`
	Currency  string          `json:"currency" gorm:"size:8;default:'MRU'"`
	Status    string          `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, active, inactive, suspended

	Reservations []Reservation       `json:"reservations,omitempty"`
	Blocks       []AvailabilityBlock `json:"blocks,omitempty"`
}

// Active reports whether the vehicle currently accepts reservations.
func (v *Vehicle) Active() bool {
	return v.Status == VehicleStatusActive
}
