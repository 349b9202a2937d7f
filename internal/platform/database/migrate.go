// File: internal/platform/database/migrate.go
package database

import (
	"context"
	"fmt"

	"accounts_backend/internal/integrity"
	"accounts_backend/internal/platform/database/migrations"
	"accounts_backend/internal/profile"
	"accounts_backend/internal/user"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded SQL migrations with goose. Safe to call
// on every startup; goose tracks the applied versions.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB for migrations: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// AutoMigrate builds the schema straight from the models. The sqlite test
// databases use this; production schemas come from RunMigrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&profile.Profile{},
		&integrity.AuditRun{},
	)
}
