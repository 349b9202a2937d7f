// File: internal/jobs/integrity_audit.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"accounts_backend/internal/config"
	"accounts_backend/internal/integrity"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IntegrityAuditJob holds dependencies for the scheduled integrity audit.
type IntegrityAuditJob struct {
	auditService  integrity.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewIntegrityAuditJob creates a new IntegrityAuditJob.
func NewIntegrityAuditJob(
	auditService integrity.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *IntegrityAuditJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &IntegrityAuditJob{
		auditService:  auditService,
		logger:        logger.Named("IntegrityAuditJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *IntegrityAuditJob) SetupAndStart() error {
	jobSpec := j.cfg.IntegrityAuditJobSchedule // e.g. "@daily", "0 3 * * *"
	if jobSpec == "" {
		j.logger.Warn("Integrity audit job schedule not defined (INTEGRITY_AUDIT_JOB_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule integrity audit job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Integrity audit job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *IntegrityAuditJob) runJob() {
	j.logger.Info("Starting integrity audit job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run, err := j.auditService.RunAudit(ctx)
	if err != nil {
		j.logger.Error("Integrity audit job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Integrity audit job run completed",
		zap.Int64("users_checked", run.UsersChecked),
		zap.Int64("profiles_checked", run.ProfilesChecked),
		zap.Int("violations", run.Violations()),
	)
}

// Stop gracefully stops the cron scheduler.
func (j *IntegrityAuditJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping integrity audit job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Integrity audit job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Integrity audit job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
