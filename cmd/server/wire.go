// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"accounts_backend/internal/app"
	"accounts_backend/internal/config"
	"accounts_backend/internal/integrity"
	"accounts_backend/internal/jobs"
	"accounts_backend/internal/platform/database"
	"accounts_backend/internal/platform/logger"
	"accounts_backend/internal/profile"
	"accounts_backend/internal/provision"
	"accounts_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,

		// Repositories
		user.NewGORMRepository,    // Provides user.Repository
		profile.NewGORMRepository, // Provides profile.Repository
		integrity.NewGORMRepository,

		// Provisioning core
		provision.NewProvisioner,

		// Services
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		integrity.NewService,
		wire.Bind(new(integrity.Service), new(*integrity.ServiceImplementation)),

		// Handlers
		user.NewHandler,

		// Jobs
		jobs.NewIntegrityAuditJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
