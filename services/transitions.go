package services

import (
	"context"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// allowedFrom maps a target status to the statuses it may be entered from
// by TransitionStatus. Reject and cancel by the parties have their own
// operations with deadline rules.
var allowedFrom = map[string][]string{
	models.StatusConfirmed:  {models.StatusPending, models.StatusAutoApproved},
	models.StatusInProgress: {models.StatusConfirmed},
	models.StatusCompleted:  {models.StatusInProgress, models.StatusDisputed},
	models.StatusDisputed:   {models.StatusConfirmed, models.StatusInProgress},
	models.StatusCancelled:  {models.StatusDisputed},
}

type TransitionRequest struct {
	ReservationID uint
	To            string
	Actor         Actor
	Reason        string
}

// TransitionStatus moves a reservation along the lifecycle driven by
// payment, pickup and dispute handling. The host may confirm; every other
// edge needs an admin.
func (s *BookingService) TransitionStatus(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	from, ok := allowedFrom[req.To]
	if !ok {
		return nil, validationError(CodeInvalidInput, "unsupported target status "+req.To)
	}

	r, err := s.loadReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if !req.Actor.Admin && !(req.To == models.StatusConfirmed && req.Actor.ID == r.HostID) {
		return nil, unauthorizedError("not allowed to move this reservation to " + req.To)
	}
	if r.IsTerminal() || !slices.Contains(from, r.Status) {
		return nil, stateError(CodeWrongStatus, "cannot move reservation from "+r.Status+" to "+req.To)
	}

	now := s.clock.Now()
	updates := map[string]interface{}{
		"status":     req.To,
		"updated_at": now,
	}
	switch req.To {
	case models.StatusConfirmed:
		if r.ApprovedAt == nil {
			updates["approved_at"] = now
			updates["approved_by"] = req.Actor.ID
		}
	case models.StatusCancelled:
		updates["cancelled_at"] = now
		updates["cancelled_by"] = req.Actor.ID
		updates["cancellation_reason"] = req.Reason
	}

	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		ok, err := tx.UpdateReservation(ctx, r.ID, storage.StatusGuard{From: from}, updates)
		if err != nil {
			return err
		}
		if !ok {
			return stateError(CodeWrongStatus, "reservation changed concurrently")
		}
		if req.To == models.StatusCancelled {
			if _, err := tx.DeleteBlocksForReservation(ctx, r.ID); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, req.Actor.ID, "reservation."+req.To, "reservation", r.ID, map[string]interface{}{
			"from":   r.Status,
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
	s.log.Infof("reservation %d %s -> %s by %d", r.ID, r.Status, req.To, req.Actor.ID)
	s.invalidateCalendar(ctx, r.VehicleID)
	if req.To == models.StatusCompleted || req.To == models.StatusDisputed || req.To == models.StatusCancelled {
		s.refreshTrust(ctx, r.RenterID)
	}
	return &TransitionResult{Reservation: updated, RefundAmount: decimal.Zero}, nil
}

// AuditTrail returns the recorded actions on one reservation, newest first.
func (s *BookingService) AuditTrail(ctx context.Context, reservationID uint) ([]models.AuditLog, error) {
	return s.store.AuditTrail(ctx, "reservation", reservationID)
}

func timePtr(t time.Time) *time.Time { return &t }
