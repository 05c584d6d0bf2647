package services

import (
	"context"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"
)

const (
	ConflictReservation = "reservation"
	ConflictBlock       = "block"
)

// Conflict is one row that makes an interval unavailable.
type Conflict struct {
	Kind   string    `json:"kind"`
	ID     uint      `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status,omitempty"`
	// Category and Reason are set for blocks.
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type AvailabilityResult struct {
	Available bool `json:"available"`
	// ConflictType is booking_conflict or manual_block when unavailable.
	ConflictType string     `json:"conflictType,omitempty"`
	Conflicts    []Conflict `json:"conflicts"`
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return validationError(CodeInvalidDates, "start and end are required")
	}
	if !end.After(start) {
		return validationError(CodeInvalidDates, "end must be after start")
	}
	return nil
}

// CheckAvailability reports whether [start, end) is free on the vehicle.
// Active reservations are checked first; blocks only when none collide.
func (s *BookingService) CheckAvailability(ctx context.Context, vehicleID uint, start, end time.Time) (*AvailabilityResult, error) {
	if err := validateInterval(start, end); err != nil {
		return nil, err
	}
	return detectConflicts(ctx, s.store, vehicleID, start.UTC(), end.UTC())
}

func detectConflicts(ctx context.Context, st *storage.Store, vehicleID uint, start, end time.Time) (*AvailabilityResult, error) {
	reservations, err := st.OverlappingReservations(ctx, vehicleID, start, end, models.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict
	for _, r := range reservations {
		if !OverlapsHalfOpen(r.StartAt, r.EndAt, start, end) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:   ConflictReservation,
			ID:     r.ID,
			Start:  r.StartAt,
			End:    r.EndAt,
			Status: r.Status,
		})
	}
	if len(conflicts) > 0 {
		return &AvailabilityResult{ConflictType: CodeBookingConflict, Conflicts: conflicts}, nil
	}

	blocks, err := st.OverlappingBlocks(ctx, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if !b.Blocked || !OverlapsClosedDates(b.StartDate, b.EndDate, start, end) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:     ConflictBlock,
			ID:       b.ID,
			Start:    b.StartDate,
			End:      b.EndDate,
			Category: b.Category,
			Reason:   b.Reason,
		})
	}
	if len(conflicts) > 0 {
		return &AvailabilityResult{ConflictType: CodeManualBlock, Conflicts: conflicts}, nil
	}

	return &AvailabilityResult{Available: true, Conflicts: []Conflict{}}, nil
}
