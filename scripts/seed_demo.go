package main

import (
	"context"
	"fmt"
	"log"

	"vehicle-rental-server/config"
	"vehicle-rental-server/models"
	"vehicle-rental-server/storage"

	"github.com/shopspring/decimal"
)

// Seeds one host with an active vehicle, its rate card and an enabled
// auto-approval policy, for trying the API locally.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db := storage.InitializeDB(cfg.Database)
	store := storage.NewStore(db)
	ctx := context.Background()

	const hostID = 1
	vehicle := models.Vehicle{
		HostID:    hostID,
		Title:     "Toyota Hilux 2021",
		Make:      "Toyota",
		Model:     "Hilux",
		Year:      2021,
		DailyRate: decimal.NewFromInt(150),
		Status:    models.VehicleStatusActive,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		log.Fatalf("Error creating vehicle: %v", err)
	}

	pricing := models.VehiclePricing{
		VehicleID:       vehicle.ID,
		DailyRate:       decimal.NewFromInt(150),
		WeeklyRate:      decimal.NewFromInt(900),
		SecurityDeposit: decimal.NewFromInt(200),
	}
	if err := db.Create(&pricing).Error; err != nil {
		log.Fatalf("Error creating pricing: %v", err)
	}

	policy, err := store.HostPolicy(ctx, hostID)
	if err != nil {
		log.Fatalf("Error loading host policy: %v", err)
	}
	policy.AutoApproveEnabled = true
	policy.MaxAutoApproveAmount = decimal.NewFromInt(500)
	if err := store.SaveHostPolicy(ctx, policy); err != nil {
		log.Fatalf("Error saving host policy: %v", err)
	}

	fmt.Printf("Seeded vehicle %d for host %d\n", vehicle.ID, hostID)
}
