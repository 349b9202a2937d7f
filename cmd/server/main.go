// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"accounts_backend/internal/config"
	"accounts_backend/internal/integrity"
	"accounts_backend/internal/platform/database"
	"accounts_backend/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "audit" {
		auditCmd := flag.NewFlagSet("audit", flag.ExitOnError)
		auditCmd.Parse(os.Args[2:])
		runAudit()
		return
	}

	// Default: Start server
	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if err := server.Migrate(context.Background()); err != nil {
		log.Fatalf("FATAL: Failed to apply database migrations: %v", err)
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runAudit performs a single foreground integrity audit run and exits
// non-zero when invariant violations were found, so it can gate deploys or
// run from external schedulers.
func runAudit() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for audit: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for audit: %v", err)
	}
	db, cleanup, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for audit", zap.Error(err))
	}
	defer cleanup()

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db); err != nil {
		appLogger.Fatal("FATAL: Failed to apply database migrations before audit", zap.Error(err))
	}

	auditService := integrity.NewService(integrity.NewGORMRepository(db), appLogger)
	run, err := auditService.RunAudit(ctx)
	if err != nil {
		appLogger.Fatal("FATAL: Integrity audit failed", zap.Error(err))
	}

	if run.Violations() > 0 {
		appLogger.Error("Integrity audit found violations",
			zap.Int("violations", run.Violations()),
			zap.Strings("orphanedUserIDs", run.OrphanedUserIDs),
			zap.Strings("strayProfileIDs", run.StrayProfileIDs),
		)
		cleanup()
		os.Exit(1)
	}
	appLogger.Info("Integrity audit completed with no violations",
		zap.Int64("usersChecked", run.UsersChecked),
		zap.Int64("profilesChecked", run.ProfilesChecked),
	)
}
