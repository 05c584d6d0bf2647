package storage

import (
	"fmt"
	"log"

	"vehicle-rental-server/config"
	"vehicle-rental-server/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database. Postgres is the production
// driver; sqlite is for local development and tests.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING environment variable is required")
		}
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "rental.db"
		}
		dialector = sqlite.Open(dsn + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Single writer: every transaction, including the create path,
		// runs alone.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Vehicle{},
		&models.VehiclePricing{},
		&models.AvailabilityBlock{},
		&models.Reservation{},
		&models.HostPolicy{},
		&models.RenterTrust{},
		&models.IdentityVerification{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
			return fmt.Errorf("btree_gist extension: %w", err)
		}
		if err := db.Exec(reservationExclusionDDL).Error; err != nil {
			return fmt.Errorf("reservation exclusion constraint: %w", err)
		}
	}
	return nil
}

// reservationExclusionDDL keeps two active reservations of one vehicle from
// overlapping even if application code races.
const reservationExclusionDDL = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_no_overlap') THEN
		ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
			EXCLUDE USING gist (vehicle_id WITH =, tstzrange(start_at, end_at, '[)') WITH &&)
			WHERE (status IN ('pending', 'confirmed', 'auto_approved', 'in_progress'));
	END IF;
END $$;
`

func InitializeDB(cfg config.DatabaseConfig) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Panic("error connection to db: " + err.Error())
	}
	if err := Migrate(db); err != nil {
		log.Panic("error migrating db: " + err.Error())
	}

	DB = db
	return db
}
