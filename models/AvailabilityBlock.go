package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	BlockCategoryManual      = "manual"
	BlockCategoryMaintenance = "maintenance"
	BlockCategoryPersonal    = "personal"
	BlockCategorySeasonal    = "seasonal"
)

// AvailabilityBlock is an explicit availability window on a vehicle, inclusive
// on both dates. Rows are keyed by (vehicle, start, end, category) so writes
// are upserts rather than duplicates; recurring writes key single-day rows on
// (vehicle, day, day) alone.
type AvailabilityBlock struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	VehicleID     uint           `json:"vehicleID" gorm:"not null;uniqueIndex:idx_block_span,priority:1"`
	StartDate     time.Time      `json:"startDate" gorm:"not null;uniqueIndex:idx_block_span,priority:2"`
	EndDate       time.Time      `json:"endDate" gorm:"not null;uniqueIndex:idx_block_span,priority:3"`
	Category      string         `json:"category" gorm:"size:20;not null;default:'manual';uniqueIndex:idx_block_span,priority:4"`
	Blocked       bool           `json:"blocked" gorm:"not null"`
	Reason        string         `json:"reason" gorm:"type:text"`
	CreatedBy     uint           `json:"createdBy"`
	ReservationID *uint          `json:"reservationID,omitempty" gorm:"index"`
	PatternID     string         `json:"patternID,omitempty" gorm:"size:36;index"`
	Pattern       datatypes.JSON `json:"pattern,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Covers reports whether day (any instant on that date) falls inside the block.
func (b *AvailabilityBlock) Covers(day time.Time) bool {
	d := TruncateDay(day)
	return !d.Before(TruncateDay(b.StartDate)) && !d.After(TruncateDay(b.EndDate))
}

// VehiclePricing is the per-vehicle rate card. Only the security deposit is
// consulted by the booking engine.
type VehiclePricing struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	VehicleID       uint            `json:"vehicleID" gorm:"not null;uniqueIndex"`
	DailyRate       decimal.Decimal `json:"dailyRate" gorm:"type:numeric(12,2);not null"`
	WeeklyRate      decimal.Decimal `json:"weeklyRate" gorm:"type:numeric(12,2)"`
	MonthlyRate     decimal.Decimal `json:"monthlyRate" gorm:"type:numeric(12,2)"`
	SecurityDeposit decimal.Decimal `json:"securityDeposit" gorm:"type:numeric(12,2)"`
	Currency        string          `json:"currency" gorm:"size:8;default:'MRU'"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TruncateDay returns midnight UTC of t's calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
