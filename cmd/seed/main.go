package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"promptchat/internal/config"
	"promptchat/internal/repository"
	"promptchat/internal/seed"
	"promptchat/internal/service/systemmessage"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the store's tables or collections before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed conversations")
	clearData := flag.Bool("clear-data", false, "Clear the demo conversations instead of seeding them")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Fatalf("STORE_DRIVER is %q; seeding an in-memory store has no effect", cfg.StoreDriver)
	}

	logger, logCloser, err := config.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	logger.Info("seeding store",
		"environment", cfg.Environment,
		"store_driver", cfg.StoreDriver,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	repo, closeStore, err := repository.Open(ctx, cfg, logger, repository.OpenOptions{Reset: *dropTables})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	if *schemaOnly {
		logger.Info("schema setup complete (schema-only mode)")
		return
	}

	seeder := seed.NewSeeder(systemmessage.NewService(repo, nil, logger), logger)
	if *clearData {
		if err := seeder.Clear(ctx, seed.DemoConversations); err != nil {
			logger.Error("clear failed", "error", err)
			return
		}
		logger.Info("demo conversations cleared")
		return
	}

	if err := seeder.Seed(ctx, seed.DemoConversations); err != nil {
		logger.Error("seed failed", "error", err)
		return
	}
	logger.Info("seeding complete", "conversations", len(seed.DemoConversations))
}
