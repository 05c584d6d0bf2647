package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrOverlap is returned when the database itself refuses an overlapping
	// active reservation.
	ErrOverlap = errors.New("overlapping active reservation")
)

// exclusionViolation is the Postgres SQLSTATE for EXCLUDE constraint failures.
const exclusionViolation = "23P01"

// Store is the gorm-backed persistence for vehicles, their availability
// blocks and reservations, and the per-user policy rows the booking engine
// reads.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside one database transaction. fn must use the Store
// it is given, not the outer one.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrOverlap
	}
	return err
}
