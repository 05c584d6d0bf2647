package services

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

type CreateReservationRequest struct {
	VehicleID uint
	RenterID  uint
	// HostID is optional; when set it must match the vehicle's host.
	HostID      uint
	StartAt     time.Time
	EndAt       time.Time
	TotalAmount decimal.Decimal

	PaymentMethod    string
	PaymentReference string
	PickupLocation   string
	DropoffLocation  string
	Note             string
}

type CreateReservationResult struct {
	Reservation *models.Reservation `json:"reservation"`
	Approval    ScoreResult         `json:"approval"`
	Message     string              `json:"message"`
}

// CreateReservation checks availability, scores the request and inserts it,
// all while holding the vehicle row lock. Two concurrent requests for
// overlapping intervals on one vehicle cannot both succeed.
func (s *BookingService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResult, error) {
	if err := validateInterval(req.StartAt, req.EndAt); err != nil {
		return nil, err
	}
	if req.TotalAmount.IsNegative() {
		return nil, validationError(CodeInvalidInput, "total amount cannot be negative")
	}

	start, end := req.StartAt.UTC(), req.EndAt.UTC()
	now := s.clock.Now()

	var (
		created  *models.Reservation
		decision ScoreResult
	)
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		vehicle, err := tx.LockVehicle(ctx, req.VehicleID)
		if errors.Is(err, storage.ErrNotFound) {
			return validationError(CodeInvalidVehicle, "vehicle not found")
		}
		if err != nil {
			return err
		}
		if !vehicle.Active() {
			return validationError(CodeInvalidVehicle, "vehicle is not accepting reservations")
		}
		if req.HostID != 0 && req.HostID != vehicle.HostID {
			return validationError(CodeInvalidVehicle, "vehicle does not belong to host")
		}

		availability, err := detectConflicts(ctx, tx, vehicle.ID, start, end)
		if err != nil {
			return err
		}
		if !availability.Available {
			if availability.ConflictType == CodeBookingConflict {
				return conflictError(CodeBookingConflict, "vehicle is already reserved for these dates", availability.Conflicts)
			}
			return conflictError(CodeVehicleUnavailable, "vehicle is blocked for these dates", availability.Conflicts)
		}

		policy, err := tx.HostPolicy(ctx, vehicle.HostID)
		if err != nil {
			return err
		}
		trust, err := tx.RenterTrust(ctx, req.RenterID)
		if err != nil {
			return err
		}
		deposit := decimal.Zero
		pricing, err := tx.VehiclePricing(ctx, vehicle.ID)
		switch {
		case err == nil:
			deposit = pricing.SecurityDeposit
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		decision = Score(ScoreInput{Policy: policy, Trust: *trust, Start: start, Amount: req.TotalAmount, Now: now})

		r := &models.Reservation{
			VehicleID:            vehicle.ID,
			RenterID:             req.RenterID,
			HostID:               vehicle.HostID,
			StartAt:              start,
			EndAt:                end,
			TotalAmount:          req.TotalAmount,
			SecurityDeposit:      deposit,
			RefundAmount:         decimal.Zero,
			Status:               models.StatusPending,
			ApprovalType:         models.ApprovalManual,
			ApprovalScore:        decision.Score,
			RejectionDeadline:    models.RejectionDeadlineFor(start),
			CancellationDeadline: models.CancellationDeadlineFor(start),
			PaymentMethod:        req.PaymentMethod,
			PaymentReference:     req.PaymentReference,
			PickupLocation:       req.PickupLocation,
			DropoffLocation:      req.DropoffLocation,
			Note:                 req.Note,
		}
		if decision.Eligible {
			r.Status = models.StatusAutoApproved
			r.ApprovalType = models.ApprovalAutomatic
			approvedAt := now
			r.ApprovedAt = &approvedAt
		}

		if err := tx.InsertReservation(ctx, r); err != nil {
			if errors.Is(err, storage.ErrOverlap) {
				return conflictError(CodeBookingConflict, "vehicle is already reserved for these dates", nil)
			}
			return err
		}

		if err := s.audit(ctx, tx, req.RenterID, "reservation.create", "reservation", r.ID, map[string]interface{}{
			"status": r.Status,
			"score":  decision.Score,
		}); err != nil {
			return err
		}

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("reservation %d created vehicle=%d renter=%d status=%s score=%d",
		created.ID, created.VehicleID, created.RenterID, created.Status, created.ApprovalScore)
	s.invalidateCalendar(ctx, created.VehicleID)
	s.refreshTrust(ctx, created.RenterID)

	msg := "Reservation request sent to host for approval"
	if created.Status == models.StatusAutoApproved {
		msg = "Reservation approved automatically"
	}
	return &CreateReservationResult{Reservation: created, Approval: decision, Message: msg}, nil
}

type RejectReservationRequest struct {
	ReservationID uint
	HostID        uint
	Reason        string
}

type TransitionResult struct {
	Reservation  *models.Reservation `json:"reservation"`
	RefundAmount decimal.Decimal     `json:"refundAmount"`
}

var rejectableStatuses = []string{models.StatusPending, models.StatusAutoApproved}

// RejectReservation lets the vehicle's host turn down a pending or
// auto-approved reservation until its rejection deadline.
func (s *BookingService) RejectReservation(ctx context.Context, req RejectReservationRequest) (*TransitionResult, error) {
	now := s.clock.Now()

	r, err := s.loadReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if r.HostID != req.HostID {
		return nil, unauthorizedError("only the vehicle's host can reject this reservation")
	}
	if !slices.Contains(rejectableStatuses, r.Status) {
		return nil, stateError(CodeWrongStatus, "reservation cannot be rejected in status "+r.Status)
	}
	deadline := r.RejectionDeadlineAt()
	if now.After(deadline) {
		return nil, deadlineError(CodeDeadlinePassed, "rejection deadline has passed", deadline)
	}

	latestStart := now.Add(models.RejectionWindow)
	var released int64
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		ok, err := tx.UpdateReservation(ctx, r.ID, storage.StatusGuard{
			From:           rejectableStatuses,
			StartNotBefore: &latestStart,
		}, map[string]interface{}{
			"status":           models.StatusRejected,
			"rejected_at":      now,
			"rejected_by":      req.HostID,
			"rejection_reason": req.Reason,
			"updated_at":       now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.explainLostUpdate(ctx, tx, r.ID, rejectableStatuses, deadline, "rejection")
		}
		if released, err = tx.DeleteBlocksForReservation(ctx, r.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, req.HostID, "reservation.reject", "reservation", r.ID, map[string]interface{}{
			"reason": req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Reservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("reservation %d rejected by host %d released_blocks=%d", r.ID, req.HostID, released)
	s.invalidateCalendar(ctx, r.VehicleID)
	s.refreshTrust(ctx, r.RenterID)
	return &TransitionResult{Reservation: updated, RefundAmount: decimal.Zero}, nil
}

type CancelReservationRequest struct {
	ReservationID uint
	RenterID      uint
	Reason        string
}

var cancellableStatuses = []string{models.StatusPending, models.StatusAutoApproved, models.StatusConfirmed}

// CancelReservation lets the renter cancel before the cancellation deadline.
// The full total is refunded; the security deposit was never part of it.
func (s *BookingService) CancelReservation(ctx context.Context, req CancelReservationRequest) (*TransitionResult, error) {
	now := s.clock.Now()

	r, err := s.loadReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if r.RenterID != req.RenterID {
		return nil, unauthorizedError("only the renter can cancel this reservation")
	}
	if !slices.Contains(cancellableStatuses, r.Status) {
		return nil, stateError(CodeWrongStatus, "reservation cannot be cancelled in status "+r.Status)
	}
	if !now.Before(r.StartAt) {
		return nil, stateError(CodeAlreadyStarted, "reservation has already started")
	}
	deadline := r.CancellationDeadlineAt()
	if now.After(deadline) {
		return nil, deadlineError(CodeDeadlinePassed, "cancellation deadline has passed", deadline)
	}

	refund := r.TotalAmount
	latestStart := now.Add(models.CancellationWindow)
	var released int64
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		ok, err := tx.UpdateReservation(ctx, r.ID, storage.StatusGuard{
			From:           cancellableStatuses,
			StartNotBefore: &latestStart,
			StartAfter:     &now,
		}, map[string]interface{}{
			"status":              models.StatusCancelled,
			"cancelled_at":        now,
			"cancelled_by":        req.RenterID,
			"cancellation_reason": req.Reason,
			"refund_amount":       refund,
			"updated_at":          now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return s.explainLostUpdate(ctx, tx, r.ID, cancellableStatuses, deadline, "cancellation")
		}
		released, err = tx.DeleteBlocksForReservation(ctx, r.ID)
		if err != nil {
			return err
		}
		return s.audit(ctx, tx, req.RenterID, "reservation.cancel", "reservation", r.ID, map[string]interface{}{
			"reason":         req.Reason,
			"refund":         refund.StringFixed(2),
			"releasedBlocks": released,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Reservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("reservation %d cancelled by renter %d refund=%s released_blocks=%d",
		r.ID, req.RenterID, refund.StringFixed(2), released)
	if refund.IsPositive() {
		if err := s.refunds.IssueRefund(ctx, updated, refund); err != nil {
			s.log.Errorf("refund for reservation %d not issued: %v", r.ID, err)
		}
	}
	s.invalidateCalendar(ctx, r.VehicleID)
	s.refreshTrust(ctx, r.RenterID)
	return &TransitionResult{Reservation: updated, RefundAmount: refund}, nil
}

// GetReservation returns the reservation with its cancellation deadline
// recomputed from the start.
func (s *BookingService) GetReservation(ctx context.Context, id uint, actor Actor) (*models.Reservation, error) {
	r, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && actor.ID != r.RenterID && actor.ID != r.HostID {
		return nil, unauthorizedError("not a party to this reservation")
	}
	r.RejectionDeadline = r.RejectionDeadlineAt()
	r.CancellationDeadline = r.CancellationDeadlineAt()
	return r, nil
}

type ListReservationsFilter = storage.ReservationFilter

// ListReservations pages through reservations for admin tooling.
func (s *BookingService) ListReservations(ctx context.Context, f ListReservationsFilter) ([]models.Reservation, int64, error) {
	return s.store.ListReservations(ctx, f)
}

func (s *BookingService) loadReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	r, err := s.store.Reservation(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundError("reservation not found")
	}
	return r, err
}

// explainLostUpdate turns a guarded update that matched no row into the
// error the caller would have got had it read the row a moment later.
func (s *BookingService) explainLostUpdate(ctx context.Context, tx *storage.Store, id uint, from []string, deadline time.Time, what string) error {
	current, err := tx.Reservation(ctx, id)
	if err != nil {
		return err
	}
	if !slices.Contains(from, current.Status) {
		return stateError(CodeWrongStatus, "reservation is now "+current.Status)
	}
	return deadlineError(CodeDeadlinePassed, what+" deadline has passed", deadline)
}
