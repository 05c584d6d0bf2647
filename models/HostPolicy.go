package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HostPolicy is a host's auto-approval configuration. One row per host,
// created disabled on first lookup.
type HostPolicy struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	HostID               uint            `json:"hostID" gorm:"not null;uniqueIndex"`
	AutoApproveEnabled   bool            `json:"autoApproveEnabled" gorm:"not null;default:false"`
	MaxAutoApproveAmount decimal.Decimal `json:"maxAutoApproveAmount" gorm:"type:numeric(12,2);not null;default:0"`
	MinAdvanceHours      int             `json:"minAdvanceHours" gorm:"not null;default:24"`
	RequireVerification  bool            `json:"requireVerification" gorm:"not null;default:true"`
	MinRenterTrustScore  int             `json:"minRenterTrustScore" gorm:"not null;default:70"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// RenterTrust is the rolling reliability signal for a renter, recomputed
// after each reservation lifecycle event.
type RenterTrust struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	RenterID            uint       `json:"renterID" gorm:"not null;uniqueIndex"`
	VerificationScore   int        `json:"verificationScore" gorm:"not null;default:0"`
	BookingHistoryScore int        `json:"bookingHistoryScore" gorm:"not null;default:0"`
	CancellationRate    int        `json:"cancellationRate" gorm:"not null;default:0"` // percent
	DisputeCount        int        `json:"disputeCount" gorm:"not null;default:0"`
	TotalBookings       int        `json:"totalBookings" gorm:"not null;default:0"`
	CompletedBookings   int        `json:"completedBookings" gorm:"not null;default:0"`
	CancelledBookings   int        `json:"cancelledBookings" gorm:"not null;default:0"`
	RejectedBookings    int        `json:"rejectedBookings" gorm:"not null;default:0"`
	NeedsRecompute      bool       `json:"needsRecompute" gorm:"not null;default:false;index"`
	LastComputedAt      *time.Time `json:"lastComputedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
