package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"vehicle-rental-server/models"

	"github.com/shopspring/decimal"
)

func TestCheckAvailabilityBookingConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	existing := env.reservation(t, v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"), models.StatusConfirmed)

	res, err := env.svc.CheckAvailability(ctx, v.ID, at("2024-08-11T09:00:00Z"), at("2024-08-13T09:00:00Z"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available || res.ConflictType != CodeBookingConflict {
		t.Fatalf("expected booking conflict, got %+v", res)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].ID != existing.ID {
		t.Fatalf("expected conflict with %d, got %+v", existing.ID, res.Conflicts)
	}

	res, err = env.svc.CheckAvailability(ctx, v.ID, at("2024-08-12T10:00:00Z"), at("2024-08-14T10:00:00Z"))
	if err != nil {
		t.Fatalf("check touching: %v", err)
	}
	if !res.Available {
		t.Fatalf("touching interval should be available, got %+v", res)
	}
}

func TestCheckAvailabilityIgnoresInactiveReservations(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	for _, status := range []string{models.StatusCancelled, models.StatusRejected, models.StatusCompleted, models.StatusDisputed} {
		env.reservation(t, v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"), status)
	}

	res, err := env.svc.CheckAvailability(context.Background(), v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("expected available, got %+v", res)
	}
}

func TestCheckAvailabilityManualBlock(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)

	if _, err := env.svc.SetManualBlock(ctx, SetBlockRequest{
		VehicleID: v.ID,
		StartDate: day("2024-08-20"),
		EndDate:   day("2024-08-22"),
		Reason:    "service",
		Actor:     Actor{ID: testHostID},
	}); err != nil {
		t.Fatalf("set block: %v", err)
	}

	res, err := env.svc.CheckAvailability(ctx, v.ID, at("2024-08-22T08:00:00Z"), at("2024-08-23T08:00:00Z"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Available || res.ConflictType != CodeManualBlock {
		t.Fatalf("expected manual block, got %+v", res)
	}

	_, err = env.svc.CreateReservation(ctx, CreateReservationRequest{
		VehicleID:   v.ID,
		RenterID:    testRenterID,
		StartAt:     at("2024-08-22T08:00:00Z"),
		EndAt:       at("2024-08-23T08:00:00Z"),
		TotalAmount: decimal.NewFromInt(100),
	})
	e := expectCode(t, err, CodeVehicleUnavailable)
	if e.Kind != KindConflict {
		t.Fatalf("expected conflict kind, got %s", e.Kind)
	}

	res, err = env.svc.CheckAvailability(ctx, v.ID, at("2024-08-23T00:00:00Z"), at("2024-08-24T00:00:00Z"))
	if err != nil {
		t.Fatalf("check after block: %v", err)
	}
	if !res.Available {
		t.Fatalf("day after block should be free, got %+v", res)
	}
}

func TestCheckAvailabilityOpenRowDoesNotConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)

	if _, err := env.svc.SetManualBlock(ctx, SetBlockRequest{
		VehicleID: v.ID,
		StartDate: day("2024-08-20"),
		EndDate:   day("2024-08-22"),
		Available: true,
		Actor:     Actor{ID: testHostID},
	}); err != nil {
		t.Fatalf("set block: %v", err)
	}
	res, err := env.svc.CheckAvailability(ctx, v.ID, at("2024-08-21T08:00:00Z"), at("2024-08-21T18:00:00Z"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Available {
		t.Fatalf("available row must not block, got %+v", res)
	}
}

func TestCheckAvailabilityInvalidDates(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	_, err := env.svc.CheckAvailability(context.Background(), v.ID, at("2024-08-12T10:00:00Z"), at("2024-08-12T10:00:00Z"))
	expectCode(t, err, CodeInvalidDates)
}

func TestCreateReservationPendingWithoutPolicy(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)

	res, err := env.svc.CreateReservation(context.Background(), CreateReservationRequest{
		VehicleID:   v.ID,
		RenterID:    testRenterID,
		StartAt:     at("2024-08-10T10:00:00Z"),
		EndAt:       at("2024-08-12T10:00:00Z"),
		TotalAmount: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r := res.Reservation
	if r.Status != models.StatusPending || r.ApprovalType != models.ApprovalManual || r.ApprovalScore != 0 {
		t.Fatalf("unexpected reservation %+v", r)
	}
	if !r.RejectionDeadline.Equal(at("2024-08-09T10:00:00Z")) {
		t.Fatalf("rejection deadline = %s", r.RejectionDeadline)
	}
	if !r.CancellationDeadline.Equal(at("2024-08-07T10:00:00Z")) {
		t.Fatalf("cancellation deadline = %s", r.CancellationDeadline)
	}
}

func TestCreateReservationAutoApproved(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	env.enableAutoApproval(t, 500)
	env.setTrust(t, testRenterID, 90, 80)

	start := env.clock.Now().Add(48 * time.Hour)
	res, err := env.svc.CreateReservation(ctx, CreateReservationRequest{
		VehicleID:   v.ID,
		RenterID:    testRenterID,
		StartAt:     start,
		EndAt:       start.Add(48 * time.Hour),
		TotalAmount: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Reservation.Status != models.StatusAutoApproved || res.Reservation.ApprovalType != models.ApprovalAutomatic {
		t.Fatalf("expected auto approval, got %+v", res.Reservation)
	}
	if res.Reservation.ApprovalScore != 80 || res.Reservation.ApprovedAt == nil {
		t.Fatalf("expected score 80 and approval time, got %+v", res.Reservation)
	}
}

func TestCreateReservationRecordsDeposit(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	if err := env.db.Create(&models.VehiclePricing{
		VehicleID:       v.ID,
		DailyRate:       decimal.NewFromInt(100),
		SecurityDeposit: decimal.NewFromInt(250),
	}).Error; err != nil {
		t.Fatalf("pricing: %v", err)
	}

	res, err := env.svc.CreateReservation(context.Background(), CreateReservationRequest{
		VehicleID:   v.ID,
		RenterID:    testRenterID,
		StartAt:     at("2024-08-10T10:00:00Z"),
		EndAt:       at("2024-08-12T10:00:00Z"),
		TotalAmount: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Reservation.SecurityDeposit.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("deposit = %s", res.Reservation.SecurityDeposit)
	}
}

func TestCreateReservationRejectsUnknownOrInactiveVehicle(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.CreateReservation(ctx, CreateReservationRequest{
		VehicleID: 999, RenterID: testRenterID,
		StartAt: at("2024-08-10T10:00:00Z"), EndAt: at("2024-08-12T10:00:00Z"),
	})
	expectCode(t, err, CodeInvalidVehicle)

	v := env.vehicle(t)
	if err := env.db.Model(v).Update("status", models.VehicleStatusSuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}
	_, err = env.svc.CreateReservation(ctx, CreateReservationRequest{
		VehicleID: v.ID, RenterID: testRenterID,
		StartAt: at("2024-08-10T10:00:00Z"), EndAt: at("2024-08-12T10:00:00Z"),
	})
	expectCode(t, err, CodeInvalidVehicle)
}

func TestCreateReservationConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	env.reservation(t, v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"), models.StatusPending)

	_, err := env.svc.CreateReservation(context.Background(), CreateReservationRequest{
		VehicleID:   v.ID,
		RenterID:    testRenterID + 1,
		StartAt:     at("2024-08-11T09:00:00Z"),
		EndAt:       at("2024-08-13T09:00:00Z"),
		TotalAmount: decimal.NewFromInt(300),
	})
	e := expectCode(t, err, CodeBookingConflict)
	if len(e.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %+v", e.Conflicts)
	}
}

func TestCreateReservationConcurrentOverlapOnlyOneWins(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		other     []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := at("2024-08-10T10:00:00Z").Add(time.Duration(i) * time.Hour)
			_, err := env.svc.CreateReservation(context.Background(), CreateReservationRequest{
				VehicleID:   v.ID,
				RenterID:    testRenterID + uint(i),
				StartAt:     start,
				EndAt:       start.Add(24 * time.Hour),
				TotalAmount: decimal.NewFromInt(100),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case IsCode(err, CodeBookingConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if successes != 1 || conflicts != n-1 {
		t.Fatalf("successes=%d conflicts=%d, want 1 and %d", successes, conflicts, n-1)
	}

	var count int64
	env.db.Model(&models.Reservation{}).Where("vehicle_id = ?", v.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one stored reservation, got %d", count)
	}
}

func TestRejectReservation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(48*time.Hour), models.StatusPending)

	_, err := env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID + 1})
	expectCode(t, err, CodeUnauthorized)

	env.clock.Set(start.Add(-25 * time.Hour))
	res, err := env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID, Reason: "not available"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Reservation.Status != models.StatusRejected || res.Reservation.RejectionReason != "not available" {
		t.Fatalf("unexpected %+v", res.Reservation)
	}
	if res.Reservation.RejectedBy == nil || *res.Reservation.RejectedBy != testHostID {
		t.Fatalf("rejected_by not recorded: %+v", res.Reservation)
	}

	// Terminal states are immutable.
	_, err = env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID})
	expectCode(t, err, CodeWrongStatus)
	_, err = env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: r.ID, RenterID: testRenterID})
	expectCode(t, err, CodeWrongStatus)

	trail, err := env.svc.AuditTrail(ctx, r.ID)
	if err != nil || len(trail) != 1 || trail[0].Action != "reservation.reject" {
		t.Fatalf("audit trail = %+v, %v", trail, err)
	}
}

func TestRejectReservationAfterDeadline(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(48*time.Hour), models.StatusAutoApproved)

	env.clock.Set(start.Add(-23 * time.Hour))
	_, err := env.svc.RejectReservation(context.Background(), RejectReservationRequest{ReservationID: r.ID, HostID: testHostID})
	e := expectCode(t, err, CodeDeadlinePassed)
	if e.Kind != KindDeadline || e.Deadline == nil || !e.Deadline.Equal(start.Add(-24*time.Hour)) {
		t.Fatalf("unexpected error %+v", e)
	}

	stored, _ := env.store.Reservation(context.Background(), r.ID)
	if stored.Status != models.StatusAutoApproved {
		t.Fatalf("status changed to %s", stored.Status)
	}
}

func TestRejectReservationUsesStartOverStoredDeadline(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(24*time.Hour), models.StatusPending)

	// A stored deadline later than start-24h must not widen the window, and
	// the reported deadline is the one the guard enforces.
	if err := env.db.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Update("rejection_deadline", start.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	env.clock.Set(start.Add(-23 * time.Hour))
	_, err := env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID})
	e := expectCode(t, err, CodeDeadlinePassed)
	if e.Deadline == nil || !e.Deadline.Equal(start.Add(-24*time.Hour)) {
		t.Fatalf("deadline = %v", e.Deadline)
	}

	// An earlier stored deadline must not narrow it either.
	if err := env.db.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Update("rejection_deadline", start.Add(-72*time.Hour)).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	env.clock.Set(start.Add(-30 * time.Hour))
	if _, err := env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID}); err != nil {
		t.Fatalf("reject inside start-derived window: %v", err)
	}
}

func TestRejectReservationReleasesTiedBlocks(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(48*time.Hour), models.StatusPending)

	buffer := r.ID
	if _, err := env.svc.SetManualBlock(ctx, SetBlockRequest{
		VehicleID:     v.ID,
		StartDate:     day("2024-08-12"),
		EndDate:       day("2024-08-13"),
		Category:      models.BlockCategoryMaintenance,
		Reason:        "cleaning",
		ReservationID: &buffer,
		Actor:         Actor{ID: testHostID},
	}); err != nil {
		t.Fatalf("buffer block: %v", err)
	}
	if _, err := env.svc.SetManualBlock(ctx, SetBlockRequest{
		VehicleID: v.ID, StartDate: day("2024-08-20"), EndDate: day("2024-08-20"), Actor: Actor{ID: testHostID},
	}); err != nil {
		t.Fatalf("untied block: %v", err)
	}

	if _, err := env.svc.RejectReservation(ctx, RejectReservationRequest{ReservationID: r.ID, HostID: testHostID}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	blocks, err := env.svc.ListBlocks(ctx, v.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ReservationID != nil {
		t.Fatalf("expected only the untied block to remain, got %+v", blocks)
	}
	res, err := env.svc.CheckAvailability(ctx, v.ID, at("2024-08-12T00:00:00Z"), at("2024-08-14T00:00:00Z"))
	if err != nil || !res.Available {
		t.Fatalf("released days still unavailable: %+v, %v", res, err)
	}
}

func TestBlockWritesSerialiseWithCreates(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)

	const n = 6
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		created     = map[int]bool{}
		unavailable = map[int]bool{}
		other       []error
	)
	for i := 0; i < n; i++ {
		start := at("2024-09-01T10:00:00Z").AddDate(0, 0, 2*i)
		blockDay := models.TruncateDay(start).AddDate(0, 0, 1)

		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.SetManualBlock(context.Background(), SetBlockRequest{
				VehicleID: v.ID, StartDate: blockDay, EndDate: blockDay, Actor: Actor{ID: testHostID},
			})
			if err != nil {
				mu.Lock()
				other = append(other, err)
				mu.Unlock()
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.CreateReservation(context.Background(), CreateReservationRequest{
				VehicleID:   v.ID,
				RenterID:    testRenterID,
				StartAt:     start,
				EndAt:       start.Add(24 * time.Hour),
				TotalAmount: decimal.NewFromInt(100),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created[i] = true
			case IsCode(err, CodeVehicleUnavailable):
				unavailable[i] = true
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if len(created)+len(unavailable) != n {
		t.Fatalf("created=%d unavailable=%d, want %d outcomes", len(created), len(unavailable), n)
	}
	blocks, _ := env.svc.ListBlocks(context.Background(), v.ID)
	if len(blocks) != n {
		t.Fatalf("expected %d blocks, got %d", n, len(blocks))
	}
}

func TestRejectReservationConfirmedIsWrongStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	r := env.reservation(t, v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"), models.StatusConfirmed)

	_, err := env.svc.RejectReservation(context.Background(), RejectReservationRequest{ReservationID: r.ID, HostID: testHostID})
	expectCode(t, err, CodeWrongStatus)
}

func TestCancelReservationRefundsTotal(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(48*time.Hour), models.StatusConfirmed)

	buffer := r.ID
	if _, err := env.svc.SetManualBlock(ctx, SetBlockRequest{
		VehicleID:     v.ID,
		StartDate:     day("2024-08-12"),
		EndDate:       day("2024-08-13"),
		Category:      models.BlockCategoryMaintenance,
		Reason:        "cleaning",
		ReservationID: &buffer,
		Actor:         Actor{ID: testHostID},
	}); err != nil {
		t.Fatalf("buffer block: %v", err)
	}

	_, err := env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: r.ID, RenterID: testRenterID + 1})
	expectCode(t, err, CodeUnauthorized)

	env.clock.Set(start.Add(-100 * time.Hour))
	res, err := env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: r.ID, RenterID: testRenterID, Reason: "plans changed"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Reservation.Status != models.StatusCancelled {
		t.Fatalf("status = %s", res.Reservation.Status)
	}
	if !res.RefundAmount.Equal(decimal.NewFromInt(300)) || !res.Reservation.RefundAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("refund = %s / %s", res.RefundAmount, res.Reservation.RefundAmount)
	}
	if got := env.refunds.issued[r.ID]; !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("refund issued = %s", got)
	}

	blocks, err := env.svc.ListBlocks(ctx, v.ID)
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("tied block not released: %+v", blocks)
	}

	trust, err := env.store.RenterTrust(ctx, testRenterID)
	if err != nil {
		t.Fatalf("trust: %v", err)
	}
	if trust.CancellationRate != 100 || trust.CancelledBookings != 1 {
		t.Fatalf("trust not recomputed: %+v", trust)
	}
}

func TestCancelReservationDeadlineBoundary(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	late := env.reservation(t, v.ID, start, start.Add(24*time.Hour), models.StatusPending)
	onTime := env.reservation(t, v.ID, start.Add(48*time.Hour), start.Add(72*time.Hour), models.StatusPending)

	env.clock.Set(late.CancellationDeadlineAt().Add(time.Second))
	_, err := env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: late.ID, RenterID: testRenterID})
	e := expectCode(t, err, CodeDeadlinePassed)
	if !e.Deadline.Equal(start.Add(-72 * time.Hour)) {
		t.Fatalf("deadline = %s", e.Deadline)
	}

	env.clock.Set(onTime.CancellationDeadlineAt())
	if _, err := env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: onTime.ID, RenterID: testRenterID}); err != nil {
		t.Fatalf("cancel exactly at deadline: %v", err)
	}
}

func TestCancelReservationUsesStartOverStoredDeadline(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(24*time.Hour), models.StatusPending)

	// A stale cached deadline later than start-72h must not widen the window.
	if err := env.db.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Update("cancellation_deadline", start.Add(-time.Hour)).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	env.clock.Set(start.Add(-48 * time.Hour))
	_, err := env.svc.CancelReservation(ctx, CancelReservationRequest{ReservationID: r.ID, RenterID: testRenterID})
	expectCode(t, err, CodeDeadlinePassed)

	got, err := env.svc.GetReservation(ctx, r.ID, Actor{ID: testRenterID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CancellationDeadline.Equal(start.Add(-72 * time.Hour)) {
		t.Fatalf("deadline = %s", got.CancellationDeadline)
	}
}

func TestCancelReservationAlreadyStarted(t *testing.T) {
	env := newTestEnv(t, nil)
	v := env.vehicle(t)
	start := at("2024-08-10T10:00:00Z")
	r := env.reservation(t, v.ID, start, start.Add(24*time.Hour), models.StatusConfirmed)

	env.clock.Set(start.Add(time.Hour))
	_, err := env.svc.CancelReservation(context.Background(), CancelReservationRequest{ReservationID: r.ID, RenterID: testRenterID})
	expectCode(t, err, CodeAlreadyStarted)
}

func TestGetReservationAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v := env.vehicle(t)
	r := env.reservation(t, v.ID, at("2024-08-10T10:00:00Z"), at("2024-08-12T10:00:00Z"), models.StatusPending)

	for _, a := range []Actor{{ID: testRenterID}, {ID: testHostID}, {ID: 999, Admin: true}} {
		if _, err := env.svc.GetReservation(ctx, r.ID, a); err != nil {
			t.Fatalf("actor %+v: %v", a, err)
		}
	}
	_, err := env.svc.GetReservation(ctx, r.ID, Actor{ID: 999})
	expectCode(t, err, CodeUnauthorized)
	_, err = env.svc.GetReservation(ctx, 12345, Actor{ID: testRenterID})
	expectCode(t, err, CodeNotFound)
}
