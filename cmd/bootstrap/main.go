package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"sparkgen-api/internal/config"
	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	fmt.Println("Running schema migration...")
	db := dataLayer.PgClient.DB().WithContext(ctx)
	if err := db.AutoMigrate(
		&entity.Account{},
		&entity.CostEvent{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	fmt.Println("Bootstrap completed.")
}
