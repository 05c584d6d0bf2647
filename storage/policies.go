package storage

import (
	"context"
	"time"

	"vehicle-rental-server/models"

	"gorm.io/gorm/clause"
)

// ReservationStats counts a renter's reservations by status.
type ReservationStats struct {
	Total    int
	ByStatus map[string]int
}

// HostPolicy returns the host's auto-approval policy, creating the default
// (disabled) row on first use.
func (s *Store) HostPolicy(ctx context.Context, hostID uint) (*models.HostPolicy, error) {
	seed := models.HostPolicy{HostID: hostID}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "host_id"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return nil, translate(err)
	}

	var p models.HostPolicy
	if err := s.conn(ctx).Where("host_id = ?", hostID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) SaveHostPolicy(ctx context.Context, p *models.HostPolicy) error {
	return translate(s.conn(ctx).Save(p).Error)
}

// RenterTrust returns the renter's trust row, creating an empty one on first
// use.
func (s *Store) RenterTrust(ctx context.Context, renterID uint) (*models.RenterTrust, error) {
	seed := models.RenterTrust{RenterID: renterID}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "renter_id"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return nil, translate(err)
	}

	var t models.RenterTrust
	if err := s.conn(ctx).Where("renter_id = ?", renterID).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) SaveRenterTrust(ctx context.Context, t *models.RenterTrust) error {
	return translate(s.conn(ctx).Save(t).Error)
}

// MarkTrustStale flags the renter's trust row for the retry job.
func (s *Store) MarkTrustStale(ctx context.Context, renterID uint) error {
	if _, err := s.RenterTrust(ctx, renterID); err != nil {
		return err
	}
	err := s.conn(ctx).Model(&models.RenterTrust{}).
		Where("renter_id = ?", renterID).
		Update("needs_recompute", true).Error
	return translate(err)
}

// StaleRenterIDs lists renters whose trust row awaits recomputation.
func (s *Store) StaleRenterIDs(ctx context.Context, limit int) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.RenterTrust{}).
		Where("needs_recompute = ?", true).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("renter_id", &ids).Error
	return ids, translate(err)
}

func (s *Store) RenterStats(ctx context.Context, renterID uint) (ReservationStats, error) {
	var rows []struct {
		Status string
		Count  int
	}
	err := s.conn(ctx).Model(&models.Reservation{}).
		Select("status, COUNT(*) AS count").
		Where("renter_id = ?", renterID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ReservationStats{}, translate(err)
	}

	stats := ReservationStats{ByStatus: make(map[string]int, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}

// VerificationScore returns the score of the renter's most recent verified
// identity check. found is false when there is none.
func (s *Store) VerificationScore(ctx context.Context, userID uint) (score int, found bool, err error) {
	var v models.IdentityVerification
	err = s.conn(ctx).
		Where("user_id = ? AND status = ?", userID, models.VerificationVerified).
		Order("id DESC").
		First(&v).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v.Score, true, nil
}

// VehiclePricing returns the vehicle's rate card.
func (s *Store) VehiclePricing(ctx context.Context, vehicleID uint) (*models.VehiclePricing, error) {
	var p models.VehiclePricing
	if err := s.conn(ctx).Where("vehicle_id = ?", vehicleID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// RecordAudit stores one audit trail entry.
func (s *Store) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return translate(s.conn(ctx).Create(entry).Error)
}

// AuditTrail lists entries for one resource, newest first.
func (s *Store) AuditTrail(ctx context.Context, resourceType string, resourceID uint) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := s.conn(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("id DESC").
		Find(&out).Error
	return out, translate(err)
}
