package services

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vehicle-rental-server/config"
	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/kataras/golog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

type recordingRefunds struct {
	mu     sync.Mutex
	issued map[uint]decimal.Decimal
}

func (r *recordingRefunds) IssueRefund(_ context.Context, res *models.Reservation, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.issued == nil {
		r.issued = map[uint]decimal.Decimal{}
	}
	r.issued[res.ID] = amount
	return nil
}

type testEnv struct {
	svc     *BookingService
	db      *gorm.DB
	store   *storage.Store
	clock   *testClock
	refunds *recordingRefunds
}

const (
	testHostID   uint = 10
	testRenterID uint = 20
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quietLogger() *golog.Logger {
	l := golog.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T, cache CalendarCache) *testEnv {
	t.Helper()

	db, err := storage.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "booking.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:      db,
		store:   storage.NewStore(db),
		clock:   &testClock{now: at("2024-08-01T09:00:00Z")},
		refunds: &recordingRefunds{},
	}
	env.svc = NewBookingService(Deps{
		Store:   env.store,
		Clock:   env.clock,
		Logger:  quietLogger(),
		Cache:   cache,
		Refunds: env.refunds,
	})
	return env
}

func (e *testEnv) vehicle(t *testing.T) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		HostID:    testHostID,
		Title:     "Hilux",
		DailyRate: decimal.NewFromInt(100),
		Status:    models.VehicleStatusActive,
	}
	if err := e.db.Create(v).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

// reservation inserts a reservation row directly, bypassing the checks.
func (e *testEnv) reservation(t *testing.T, vehicleID uint, start, end time.Time, status string) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		VehicleID:            vehicleID,
		RenterID:             testRenterID,
		HostID:               testHostID,
		StartAt:              start,
		EndAt:                end,
		TotalAmount:          decimal.NewFromInt(300),
		Status:               status,
		ApprovalType:         models.ApprovalManual,
		RejectionDeadline:    models.RejectionDeadlineFor(start),
		CancellationDeadline: models.CancellationDeadlineFor(start),
	}
	if err := e.store.InsertReservation(context.Background(), r); err != nil {
		t.Fatalf("insert reservation: %v", err)
	}
	return r
}

func (e *testEnv) enableAutoApproval(t *testing.T, max int64) {
	t.Helper()
	ctx := context.Background()
	p, err := e.store.HostPolicy(ctx, testHostID)
	if err != nil {
		t.Fatalf("host policy: %v", err)
	}
	p.AutoApproveEnabled = true
	p.MaxAutoApproveAmount = decimal.NewFromInt(max)
	p.MinAdvanceHours = 24
	p.RequireVerification = true
	p.MinRenterTrustScore = 70
	if err := e.store.SaveHostPolicy(ctx, p); err != nil {
		t.Fatalf("save host policy: %v", err)
	}
}

func (e *testEnv) setTrust(t *testing.T, renterID uint, verification, history int) {
	t.Helper()
	ctx := context.Background()
	tr, err := e.store.RenterTrust(ctx, renterID)
	if err != nil {
		t.Fatalf("renter trust: %v", err)
	}
	tr.VerificationScore = verification
	tr.BookingHistoryScore = history
	if err := e.store.SaveRenterTrust(ctx, tr); err != nil {
		t.Fatalf("save renter trust: %v", err)
	}
}

func expectCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error with code %s, got %v", code, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, e.Code, e.Message)
	}
	return e
}
