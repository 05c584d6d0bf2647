package services

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/shopspring/decimal"
)

type HostPolicyUpdate struct {
	AutoApproveEnabled   bool
	MaxAutoApproveAmount decimal.Decimal
	MinAdvanceHours      int
	RequireVerification  bool
	MinRenterTrustScore  int
}

// HostPolicy returns the host's policy, creating the disabled default.
func (s *BookingService) HostPolicy(ctx context.Context, hostID uint) (*models.HostPolicy, error) {
	return s.store.HostPolicy(ctx, hostID)
}

func (s *BookingService) UpdateHostPolicy(ctx context.Context, hostID uint, upd HostPolicyUpdate) (*models.HostPolicy, error) {
	if upd.MaxAutoApproveAmount.IsNegative() {
		return nil, validationError(CodeInvalidInput, "max auto-approve amount cannot be negative")
	}
	if upd.MinAdvanceHours < 0 {
		return nil, validationError(CodeInvalidInput, "min advance hours cannot be negative")
	}
	if upd.MinRenterTrustScore < 0 || upd.MinRenterTrustScore > 100 {
		return nil, validationError(CodeInvalidInput, "min renter trust score must be within 0..100")
	}

	var out *models.HostPolicy
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		p, err := tx.HostPolicy(ctx, hostID)
		if err != nil {
			return err
		}
		p.AutoApproveEnabled = upd.AutoApproveEnabled
		p.MaxAutoApproveAmount = upd.MaxAutoApproveAmount
		p.MinAdvanceHours = upd.MinAdvanceHours
		p.RequireVerification = upd.RequireVerification
		p.MinRenterTrustScore = upd.MinRenterTrustScore
		if err := tx.SaveHostPolicy(ctx, p); err != nil {
			return err
		}
		out = p
		return s.audit(ctx, tx, hostID, "policy.update", "host_policy", p.ID, map[string]interface{}{
			"autoApprove": p.AutoApproveEnabled,
			"maxAmount":   p.MaxAutoApproveAmount.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScoreReservation previews the approval decision a request would get right
// now, without writing anything.
func (s *BookingService) ScoreReservation(ctx context.Context, vehicleID, renterID uint, start time.Time, amount decimal.Decimal) (*ScoreResult, error) {
	if start.IsZero() {
		return nil, validationError(CodeInvalidDates, "start is required")
	}
	vehicle, err := s.store.Vehicle(ctx, vehicleID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, validationError(CodeInvalidVehicle, "vehicle not found")
	}
	if err != nil {
		return nil, err
	}
	policy, err := s.store.HostPolicy(ctx, vehicle.HostID)
	if err != nil {
		return nil, err
	}
	trust, err := s.store.RenterTrust(ctx, renterID)
	if err != nil {
		return nil, err
	}
	res := Score(ScoreInput{Policy: policy, Trust: *trust, Start: start.UTC(), Amount: amount, Now: s.clock.Now()})
	return &res, nil
}
