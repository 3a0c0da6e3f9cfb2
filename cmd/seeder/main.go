package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/kingside/internal/currency"
	"github.com/mauv0809/kingside/internal/database"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/wallet"
	"github.com/shopspring/decimal"
)

const (
	numTournaments = 50
	numProfiles    = 200
)

// Entry fees in naira; zero is a free tournament.
var entryFees = []string{"0", "500", "1000", "2500", "5000"}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB("", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the primary database.")

	startTime := time.Now()
	store := tournament.New(db)
	for i := 0; i < numTournaments; i++ {
		fee := currency.ToMinor(decimal.RequireFromString(entryFees[rand.Intn(len(entryFees))]))
		start := time.Now().Add(time.Duration(1+rand.Intn(30*24)) * time.Hour)
		end := start.Add(3 * time.Hour)
		capacity := 8 << rand.Intn(4)
		t := &tournament.Tournament{
			Title:           fmt.Sprintf("Seeded Arena %d", i+1),
			HostID:          fmt.Sprintf("host-%d", 1+rand.Intn(5)),
			EntryFee:        fee,
			Currency:        currency.DefaultCode,
			MaxParticipants: &capacity,
			StartDate:       &start,
			EndDate:         &end,
			Platform:        "lichess",
			Status:          tournament.StatusPublished,
		}
		if err := store.Create(ctx, t); err != nil {
			log.Fatalf("Failed to insert tournament %s: %s", t.Title, err)
		}
	}
	log.Info("Inserted tournaments", "total", numTournaments)

	ledger := wallet.New(db)
	for i := 0; i < numProfiles; i++ {
		amount := currency.ToMinor(decimal.NewFromInt(int64(1000 + rand.Intn(50000))))
		_, err := ledger.Credit(ctx, wallet.Entry{
			ProfileID:   fmt.Sprintf("seed-profile-%d", i+1),
			Amount:      amount,
			Type:        wallet.TxDeposit,
			Description: "Seeded deposit",
		})
		if err != nil {
			log.Fatalf("Failed to fund profile %d: %s", i+1, err)
		}
	}
	log.Info("Funded wallets", "total", numProfiles)

	duration := time.Since(startTime)
	log.Info("Successfully seeded the database.", "duration", duration)
}
