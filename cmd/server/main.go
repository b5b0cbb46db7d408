package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"sharecast/internal/auth"
	"sharecast/internal/config"
	"sharecast/internal/handler"
	"sharecast/internal/middleware"
	"sharecast/internal/repository/postgres"
	postgresIdentity "sharecast/internal/repository/postgres/identity"
	"sharecast/internal/repository/restapi"
	"sharecast/internal/routes"
	serviceIdentity "sharecast/internal/service/identity"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier for session authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// pgx connection pool - the standard authority-store path
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	profileRepo := postgresIdentity.NewProfileRepository(repoConfig)
	sharerRepo := postgresIdentity.NewSharerProfileRepository(repoConfig)
	executorRepo := postgresIdentity.NewExecutorLinkRepository(repoConfig)
	listenerRepo := postgresIdentity.NewListenerLinkRepository(repoConfig)
	roleRepo := postgresIdentity.NewRoleAssignmentRepository(repoConfig)
	invitationRepo := postgresIdentity.NewInvitationRepository(repoConfig)

	// Privileged client - bypass reads and stored-procedure writes
	serviceClient := auth.NewServiceClient(cfg.PlatformURL, cfg.ServiceKey)
	privilegedStore := restapi.NewStore(serviceClient, tables)

	// Routes registry
	routeRegistry, err := routes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load routes registry: %v", err)
	}

	// Identity core. The full gate answers "may act on"; the management
	// gate answers "may control" and excludes listener links.
	gate := serviceIdentity.NewAccessGate(roleRepo, sharerRepo, executorRepo, listenerRepo, logger)
	managementGate := serviceIdentity.NewManagementGate(roleRepo, sharerRepo, executorRepo, logger)
	resolver := serviceIdentity.NewPartitionResolver(sharerRepo, executorRepo, privilegedStore, gate, logger)
	provisioner := serviceIdentity.NewInvitationProvisioner(
		invitationRepo,
		profileRepo,
		roleRepo,
		executorRepo,
		listenerRepo,
		privilegedStore,
		logger,
	)
	invitationService := serviceIdentity.NewInvitationService(invitationRepo, managementGate, logger)
	delegationService := serviceIdentity.NewDelegationService(listenerRepo, managementGate, logger)
	roleRouter := serviceIdentity.NewRoleRouter(routeRegistry, roleRepo, logger)

	logger.Info("services initialized")

	// Handlers
	meHandler := handler.NewMeHandler(resolver, roleRouter, profileRepo, logger)
	accessHandler := handler.NewAccessHandler(gate, delegationService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, provisioner, logger)

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", meHandler.HealthCheck)

	mux.HandleFunc("GET /api/me/profile", meHandler.GetProfile)
	mux.HandleFunc("GET /api/me/partition", meHandler.GetPartition)
	mux.HandleFunc("GET /api/me/route", meHandler.GetRoute)

	mux.HandleFunc("GET /api/partitions/{id}/access", accessHandler.CheckAccess)
	mux.HandleFunc("PUT /api/partitions/{id}/listeners/{principal_id}/access", accessHandler.SetListenerAccess)

	mux.HandleFunc("POST /api/invitations", invitationHandler.CreateInvitation)
	mux.HandleFunc("GET /api/invitations/{id}", invitationHandler.GetInvitation)
	mux.HandleFunc("POST /api/invitations/{id}/accept", invitationHandler.AcceptInvitation)
	mux.HandleFunc("POST /api/invitations/{id}/revoke", invitationHandler.RevokeInvitation)

	// Middleware chain, applied in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	shutdownDone := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		close(shutdownDone)
	}()

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	<-shutdownDone
	logger.Info("server stopped")
}
