// File: internal/integrity/service.go

// Package integrity audits the one-profile-per-user invariant. The audit is
// report-only: the creation path already enforces the invariant
// transactionally, so anything found here is damage done out-of-band, and
// repairing it automatically would just hide the underlying cause.
package integrity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service defines the integrity audit operations.
type Service interface {
	// RunAudit scans for invariant violations and persists the result.
	RunAudit(ctx context.Context) (*AuditRun, error)
	LatestRun(ctx context.Context) (*AuditRun, error)
}

// ServiceImplementation implements the Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new integrity service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("IntegrityAudit"),
	}
}

// RunAudit checks both directions of the user/profile association and
// records an AuditRun row. The run row is written even when everything is
// clean, so "the audit ran and found nothing" is distinguishable from "the
// audit never ran".
func (s *ServiceImplementation) RunAudit(ctx context.Context) (*AuditRun, error) {
	startedAt := time.Now()
	s.logger.Info("Starting integrity audit run")

	usersChecked, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	profilesChecked, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}

	orphanedUsers, err := s.repo.OrphanedUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphaned users: %w", err)
	}
	strayProfiles, err := s.repo.StrayProfileIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query stray profiles: %w", err)
	}

	run := &AuditRun{
		UsersChecked:    usersChecked,
		ProfilesChecked: profilesChecked,
		OrphanedUserIDs: orphanedUsers,
		StrayProfileIDs: strayProfiles,
		StartedAt:       startedAt,
		FinishedAt:      time.Now(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist audit run: %w", err)
	}

	if run.Violations() > 0 {
		s.logger.Warn("Integrity audit found invariant violations",
			zap.Int64("usersChecked", usersChecked),
			zap.Int64("profilesChecked", profilesChecked),
			zap.Strings("orphanedUserIDs", orphanedUsers),
			zap.Strings("strayProfileIDs", strayProfiles),
		)
	} else {
		s.logger.Info("Integrity audit run clean",
			zap.Int64("usersChecked", usersChecked),
			zap.Int64("profilesChecked", profilesChecked),
			zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
		)
	}
	return run, nil
}

// LatestRun returns the most recently finished audit run.
func (s *ServiceImplementation) LatestRun(ctx context.Context) (*AuditRun, error) {
	return s.repo.LatestRun(ctx)
}
