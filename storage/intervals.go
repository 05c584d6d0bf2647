package storage

import (
	"context"
	"time"

	"vehicle-rental-server/models"

	"gorm.io/gorm/clause"
)

// StatusGuard is the compare-and-swap condition for a reservation update.
// The update only applies while the row still matches it.
type StatusGuard struct {
	From []string
	// StartNotBefore, when set, requires start_at >= the given instant. It
	// carries deadline checks into the same statement as the write.
	StartNotBefore *time.Time
	// StartAfter, when set, requires start_at > the given instant.
	StartAfter *time.Time
}

func (s *Store) Vehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := s.conn(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// LockVehicle loads the vehicle row FOR UPDATE, serialising every writer of
// that vehicle's timeline until the surrounding transaction ends.
func (s *Store) LockVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// OverlappingReservations returns reservations of the vehicle in one of
// statuses whose [start_at, end_at) intersects [start, end).
func (s *Store) OverlappingReservations(ctx context.Context, vehicleID uint, start, end time.Time, statuses []string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.conn(ctx).
		Where("vehicle_id = ? AND status IN ? AND start_at < ? AND end_at > ?",
			vehicleID, statuses, end.UTC(), start.UTC()).
		Order("start_at ASC").
		Find(&out).Error
	return out, translate(err)
}

// OverlappingBlocks returns blocked (unavailable) rows of the vehicle whose
// closed date range intersects [from, to].
func (s *Store) OverlappingBlocks(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.AvailabilityBlock, error) {
	var out []models.AvailabilityBlock
	err := s.conn(ctx).
		Where("vehicle_id = ? AND blocked = ? AND start_date <= ? AND end_date >= ?",
			vehicleID, true, models.TruncateDay(to), models.TruncateDay(from)).
		Order("start_date ASC").
		Find(&out).Error
	return out, translate(err)
}

// BlocksInRange is OverlappingBlocks without the blocked filter.
func (s *Store) BlocksInRange(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.AvailabilityBlock, error) {
	var out []models.AvailabilityBlock
	err := s.conn(ctx).
		Where("vehicle_id = ? AND start_date <= ? AND end_date >= ?",
			vehicleID, models.TruncateDay(to), models.TruncateDay(from)).
		Order("start_date ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) ListBlocks(ctx context.Context, vehicleID uint) ([]models.AvailabilityBlock, error) {
	var out []models.AvailabilityBlock
	err := s.conn(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("start_date ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) Block(ctx context.Context, id uint) (*models.AvailabilityBlock, error) {
	var b models.AvailabilityBlock
	if err := s.conn(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// UpsertBlock writes b keyed by (vehicle, start date, end date, category).
// An existing row with the same key is updated in place and b is reloaded
// with the stored values.
func (s *Store) UpsertBlock(ctx context.Context, b *models.AvailabilityBlock) error {
	b.StartDate = models.TruncateDay(b.StartDate)
	b.EndDate = models.TruncateDay(b.EndDate)
	if b.Category == "" {
		b.Category = models.BlockCategoryManual
	}

	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vehicle_id"}, {Name: "start_date"}, {Name: "end_date"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"blocked", "reason", "created_by", "reservation_id", "pattern_id", "pattern", "updated_at",
		}),
	}).Create(b).Error
	if err != nil {
		return translate(err)
	}

	err = s.conn(ctx).
		Where("vehicle_id = ? AND start_date = ? AND end_date = ? AND category = ?",
			b.VehicleID, b.StartDate, b.EndDate, b.Category).
		First(b).Error
	return translate(err)
}

// UpsertDayBlock writes a single-day block keyed by (vehicle, day, day)
// whatever category the row already on that day carries. The kept row takes
// b's category and fields; other rows on the same one-day span are dropped.
func (s *Store) UpsertDayBlock(ctx context.Context, b *models.AvailabilityBlock) error {
	b.StartDate = models.TruncateDay(b.StartDate)
	b.EndDate = b.StartDate

	var existing []models.AvailabilityBlock
	err := s.conn(ctx).
		Where("vehicle_id = ? AND start_date = ? AND end_date = ?", b.VehicleID, b.StartDate, b.EndDate).
		Order("id").
		Find(&existing).Error
	if err != nil {
		return translate(err)
	}
	if len(existing) == 0 {
		return translate(s.conn(ctx).Create(b).Error)
	}

	keep := existing[0]
	for _, e := range existing {
		if e.Category == b.Category {
			keep = e
			break
		}
	}
	var drop []uint
	for _, e := range existing {
		if e.ID != keep.ID {
			drop = append(drop, e.ID)
		}
	}
	if len(drop) > 0 {
		if err := s.conn(ctx).Delete(&models.AvailabilityBlock{}, drop).Error; err != nil {
			return translate(err)
		}
	}

	err = s.conn(ctx).Model(&models.AvailabilityBlock{}).
		Where("id = ?", keep.ID).
		Updates(map[string]interface{}{
			"category":       b.Category,
			"blocked":        b.Blocked,
			"reason":         b.Reason,
			"created_by":     b.CreatedBy,
			"reservation_id": b.ReservationID,
			"pattern_id":     b.PatternID,
			"pattern":        b.Pattern,
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return translate(err)
	}
	return translate(s.conn(ctx).First(b, keep.ID).Error)
}

func (s *Store) DeleteBlock(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.AvailabilityBlock{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBlocksForReservation releases every block row tied to the reservation.
func (s *Store) DeleteBlocksForReservation(ctx context.Context, reservationID uint) (int64, error) {
	res := s.conn(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.AvailabilityBlock{})
	return res.RowsAffected, translate(res.Error)
}

func (s *Store) InsertReservation(ctx context.Context, r *models.Reservation) error {
	r.StartAt = r.StartAt.UTC()
	r.EndAt = r.EndAt.UTC()
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *Store) Reservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.conn(ctx).First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// UpdateReservation applies updates to the reservation only while guard
// holds. It reports whether the row was changed.
func (s *Store) UpdateReservation(ctx context.Context, id uint, guard StatusGuard, updates map[string]interface{}) (bool, error) {
	q := s.conn(ctx).Model(&models.Reservation{}).Where("id = ?", id)
	if len(guard.From) > 0 {
		q = q.Where("status IN ?", guard.From)
	}
	if guard.StartNotBefore != nil {
		q = q.Where("start_at >= ?", guard.StartNotBefore.UTC())
	}
	if guard.StartAfter != nil {
		q = q.Where("start_at > ?", guard.StartAfter.UTC())
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReservationFilter narrows ListReservations. Zero fields match everything.
type ReservationFilter struct {
	VehicleID uint
	RenterID  uint
	HostID    uint
	Status    string
	Page      int
	Limit     int
}

func (s *Store) ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, int64, error) {
	q := s.conn(ctx).Model(&models.Reservation{})
	if f.VehicleID != 0 {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.RenterID != 0 {
		q = q.Where("renter_id = ?", f.RenterID)
	}
	if f.HostID != 0 {
		q = q.Where("host_id = ?", f.HostID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	var out []models.Reservation
	err := q.Order("start_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&out).Error
	return out, total, translate(err)
}
