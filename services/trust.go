package services

import (
	"context"

	"vehicle-rental-server/models"

	"github.com/robfig/cron/v3"
)

// RecomputeTrust rebuilds the renter's trust row from their reservation
// history. The verification score only changes when a verified identity
// check exists.
func (s *BookingService) RecomputeTrust(ctx context.Context, renterID uint) (*models.RenterTrust, error) {
	stats, err := s.store.RenterStats(ctx, renterID)
	if err != nil {
		return nil, err
	}
	trust, err := s.store.RenterTrust(ctx, renterID)
	if err != nil {
		return nil, err
	}
	verification, found, err := s.store.VerificationScore(ctx, renterID)
	if err != nil {
		return nil, err
	}

	completed := stats.ByStatus[models.StatusCompleted]
	cancelled := stats.ByStatus[models.StatusCancelled]

	trust.TotalBookings = stats.Total
	trust.CompletedBookings = completed
	trust.CancelledBookings = cancelled
	trust.RejectedBookings = stats.ByStatus[models.StatusRejected]
	trust.DisputeCount = stats.ByStatus[models.StatusDisputed]
	trust.BookingHistoryScore = min(100, completed*10)
	trust.CancellationRate = 0
	if stats.Total > 0 {
		trust.CancellationRate = cancelled * 100 / stats.Total
	}
	if found {
		trust.VerificationScore = verification
	}
	trust.NeedsRecompute = false
	trust.LastComputedAt = timePtr(s.clock.Now())

	if err := s.store.SaveRenterTrust(ctx, trust); err != nil {
		return nil, err
	}
	return trust, nil
}

// refreshTrust runs after a reservation transition has committed. A failure
// cannot undo the transition, so the row is flagged for the retry job.
func (s *BookingService) refreshTrust(ctx context.Context, renterID uint) {
	if _, err := s.RecomputeTrust(ctx, renterID); err != nil {
		s.log.Errorf("renter %d trust recompute failed, queued for retry: %v", renterID, err)
		if err := s.store.MarkTrustStale(ctx, renterID); err != nil {
			s.log.Errorf("renter %d trust could not be flagged stale: %v", renterID, err)
		}
	}
}

// RetryStaleTrust recomputes up to limit flagged trust rows and returns how
// many succeeded.
func (s *BookingService) RetryStaleTrust(ctx context.Context, limit int) (int, error) {
	ids, err := s.store.StaleRenterIDs(ctx, limit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if _, err := s.RecomputeTrust(ctx, id); err != nil {
			s.log.Warnf("renter %d trust retry failed: %v", id, err)
			continue
		}
		done++
	}
	return done, nil
}

// StartTrustRetry schedules RetryStaleTrust. The caller stops the returned
// cron on shutdown.
func (s *BookingService) StartTrustRetry(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.RetryStaleTrust(context.Background(), 100)
		if err != nil {
			s.log.Errorf("trust retry run: %v", err)
			return
		}
		if n > 0 {
			s.log.Infof("trust retry recomputed %d renters", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
