package main

import (
	"context"
	"log"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/store"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer db.Close()

	checkCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	status, err := store.GetMigrationStatus(checkCtx, db)
	cancel()
	if err != nil {
		logger.Fatalf("migration status: %v", err)
	}
	logger.Printf("migration status current=%d latest=%d pending=%t", status.CurrentVersion, status.LatestVersion, status.HasPending)
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	logger.Printf("migrations applied")
}
