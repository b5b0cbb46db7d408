package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"sharecast/internal/auth"
	"sharecast/internal/config"
	"sharecast/internal/repository/postgres"
	"sharecast/internal/seed"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all identity tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	demoUser := flag.String("demo-user", "", "Also create this auth user via the admin API (requires PLATFORM_URL and SERVICE_KEY)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: destructive operations stay out of production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("seeding identity schema",
		"environment", cfg.Environment,
		"table_prefix", cfg.TablePrefix,
		"drop_tables", *dropTables,
		"schema_only", *schemaOnly,
	)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		if err := seed.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("identity tables dropped")
	}

	if err := seed.Schema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	logger.Info("identity schema ready")

	if *schemaOnly {
		return
	}

	if err := seed.Demo(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	if *demoUser != "" {
		client := auth.NewServiceClient(cfg.PlatformURL, cfg.ServiceKey)
		// Recreate so repeated seeding yields a known credential
		if err := client.DeleteUserByEmail(ctx, *demoUser); err != nil {
			log.Fatalf("Failed to delete existing auth user: %v", err)
		}
		userID, err := client.CreateUser(ctx, *demoUser, "sharecast-dev-password")
		if err != nil {
			log.Fatalf("Failed to create auth user: %v", err)
		}
		logger.Info("auth user created", "email", *demoUser, "user_id", userID)
	}

	logger.Info("seeding complete")
}
