package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

const (
	StatusPending      = "pending"
	StatusAutoApproved = "auto_approved"
	StatusConfirmed    = "confirmed"
	StatusInProgress   = "in_progress"
	StatusCompleted    = "completed"
	StatusCancelled    = "cancelled"
	StatusRejected     = "rejected"
	StatusDisputed     = "disputed"
)

const (
	ApprovalManual    = "manual"
	ApprovalAutomatic = "automatic"
)

const (
	// RejectionWindow is how long before start a host may still reject.
	RejectionWindow = 24 * time.Hour
	// CancellationWindow is how long before start a renter may still cancel.
	CancellationWindow = 72 * time.Hour
)

// ActiveStatuses hold the vehicle: a reservation in one of these states
// blocks every overlapping request.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusAutoApproved, StatusInProgress}

// TerminalStatuses can never be left.
var TerminalStatuses = []string{StatusCompleted, StatusCancelled, StatusRejected}

// Reservation is a renter's request for a vehicle over [StartAt, EndAt).
// Rows are never deleted; terminal ones stay for audit.
type Reservation struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	VehicleID uint `json:"vehicleID" gorm:"not null;index:idx_reservation_vehicle_span,priority:1"`
	RenterID  uint `json:"renterID" gorm:"not null;index"`
	HostID    uint `json:"hostID" gorm:"not null;index"`

	StartAt time.Time `json:"startAt" gorm:"not null;index:idx_reservation_vehicle_span,priority:2"`
	EndAt   time.Time `json:"endAt" gorm:"not null;index:idx_reservation_vehicle_span,priority:3"`

	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:numeric(12,2);not null"`
	SecurityDeposit decimal.Decimal `json:"securityDeposit" gorm:"type:numeric(12,2);not null;default:0"`
	RefundAmount    decimal.Decimal `json:"refundAmount" gorm:"type:numeric(12,2);not null;default:0"`

	Status        string `json:"status" gorm:"type:varchar(20);not null;index"`
	ApprovalType  string `json:"approvalType" gorm:"type:varchar(20);not null;default:'manual'"`
	ApprovalScore int    `json:"approvalScore"`

	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy         *uint      `json:"approvedBy,omitempty"`
	RejectedAt         *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy         *uint      `json:"rejectedBy,omitempty"`
	RejectionReason    string     `json:"rejectionReason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy        *uint      `json:"cancelledBy,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty" gorm:"type:text"`

	// RejectionDeadline is stored at create; RejectionDeadlineAt decides.
	RejectionDeadline time.Time `json:"rejectionDeadline"`
	// CancellationDeadline is a cache of StartAt - CancellationWindow; use
	// CancellationDeadlineAt for decisions.
	CancellationDeadline time.Time `json:"cancellationDeadline"`

	// Passed through from the request, never interpreted here.
	PaymentMethod    string `json:"paymentMethod,omitempty" gorm:"size:32"`
	PaymentReference string `json:"paymentReference,omitempty" gorm:"size:128"`
	PickupLocation   string `json:"pickupLocation,omitempty" gorm:"type:text"`
	DropoffLocation  string `json:"dropoffLocation,omitempty" gorm:"type:text"`
	Note             string `json:"note,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Vehicle *Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

// RejectionDeadlineFor is the last instant a host may reject a reservation
// starting at start.
func RejectionDeadlineFor(start time.Time) time.Time {
	return start.Add(-RejectionWindow)
}

// RejectionDeadlineAt recomputes the rejection deadline from StartAt, the
// same instant the reject guard checks.
func (r *Reservation) RejectionDeadlineAt() time.Time {
	return RejectionDeadlineFor(r.StartAt)
}

// CancellationDeadlineFor is the last instant a renter may cancel a
// reservation starting at start.
func CancellationDeadlineFor(start time.Time) time.Time {
	return start.Add(-CancellationWindow)
}

// CancellationDeadlineAt recomputes the deadline from StartAt. The stored
// column may be stale after a reschedule; this value wins.
func (r *Reservation) CancellationDeadlineAt() time.Time {
	return CancellationDeadlineFor(r.StartAt)
}

// IsActive reports whether the reservation holds its interval.
func (r *Reservation) IsActive() bool {
	return IsActiveStatus(r.Status)
}

// IsTerminal reports whether the reservation can no longer change state.
func (r *Reservation) IsTerminal() bool {
	return slices.Contains(TerminalStatuses, r.Status)
}

func IsActiveStatus(status string) bool {
	return slices.Contains(ActiveStatuses, status)
}
