package services

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"golang.org/x/exp/slices"
)

var hostBlockCategories = []string{
	models.BlockCategoryManual,
	models.BlockCategoryMaintenance,
	models.BlockCategoryPersonal,
	models.BlockCategorySeasonal,
}

type SetBlockRequest struct {
	VehicleID uint
	StartDate time.Time
	EndDate   time.Time
	// Available=true writes an explicit "open" row, which never conflicts.
	Available bool
	Category  string
	Reason    string
	// ReservationID ties the block to a reservation; it is released when
	// that reservation is cancelled.
	ReservationID *uint
	Actor         Actor
}

// SetManualBlock upserts a block on the vehicle keyed by its dates and
// category. The write holds the vehicle row lock, so it serialises with
// CreateReservation on the same vehicle.
func (s *BookingService) SetManualBlock(ctx context.Context, req SetBlockRequest) (*models.AvailabilityBlock, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, validationError(CodeInvalidDates, "start and end dates are required")
	}
	start, end := models.TruncateDay(req.StartDate), models.TruncateDay(req.EndDate)
	if end.Before(start) {
		return nil, validationError(CodeInvalidDates, "end date must not be before start date")
	}
	category := req.Category
	if category == "" {
		category = models.BlockCategoryManual
	}
	if !slices.Contains(hostBlockCategories, category) {
		return nil, validationError(CodeInvalidInput, "unknown block category "+category)
	}

	vehicle, err := s.vehicleForActor(ctx, s.store, req.VehicleID, req.Actor)
	if err != nil {
		return nil, err
	}
	if req.ReservationID != nil {
		r, err := s.store.Reservation(ctx, *req.ReservationID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && r.VehicleID != vehicle.ID) {
			return nil, validationError(CodeInvalidInput, "reservation does not belong to this vehicle")
		}
		if err != nil {
			return nil, err
		}
	}

	block := &models.AvailabilityBlock{
		VehicleID:     vehicle.ID,
		StartDate:     start,
		EndDate:       end,
		Category:      category,
		Blocked:       !req.Available,
		Reason:        req.Reason,
		CreatedBy:     req.Actor.ID,
		ReservationID: req.ReservationID,
	}
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		if _, err := tx.LockVehicle(ctx, vehicle.ID); err != nil {
			return err
		}
		if err := tx.UpsertBlock(ctx, block); err != nil {
			return err
		}
		return s.audit(ctx, tx, req.Actor.ID, "block.set", "vehicle", vehicle.ID, map[string]interface{}{
			"blockID":  block.ID,
			"start":    start.Format(dateLayout),
			"end":      end.Format(dateLayout),
			"blocked":  block.Blocked,
			"category": category,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCalendar(ctx, vehicle.ID)
	return block, nil
}

// DeleteBlock removes one block of the vehicle.
func (s *BookingService) DeleteBlock(ctx context.Context, vehicleID, blockID uint, actor Actor) error {
	if _, err := s.vehicleForActor(ctx, s.store, vehicleID, actor); err != nil {
		return err
	}
	b, err := s.store.Block(ctx, blockID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && b.VehicleID != vehicleID) {
		return notFoundError("block not found")
	}
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		if err := tx.DeleteBlock(ctx, blockID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFoundError("block not found")
			}
			return err
		}
		return s.audit(ctx, tx, actor.ID, "block.delete", "vehicle", vehicleID, map[string]interface{}{
			"blockID": blockID,
		})
	})
	if err != nil {
		return err
	}
	s.invalidateCalendar(ctx, vehicleID)
	return nil
}

// ListBlocks returns every block row of the vehicle ordered by start date.
func (s *BookingService) ListBlocks(ctx context.Context, vehicleID uint) ([]models.AvailabilityBlock, error) {
	if _, err := s.store.Vehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("vehicle not found")
		}
		return nil, err
	}
	return s.store.ListBlocks(ctx, vehicleID)
}
