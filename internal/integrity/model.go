// File: internal/integrity/model.go
package integrity

import (
	"time"

	"accounts_backend/internal/common"

	"github.com/lib/pq"
)

// AuditRun records one pass of the profile invariant audit. Violating IDs
// are kept as text[] so a run with thousands of them stays one row.
type AuditRun struct {
	common.BaseModel
	UsersChecked    int64          `gorm:"column:users_checked;not null;default:0"`
	ProfilesChecked int64          `gorm:"column:profiles_checked;not null;default:0"`
	OrphanedUserIDs pq.StringArray `gorm:"column:orphaned_user_ids;type:text[]"`
	StrayProfileIDs pq.StringArray `gorm:"column:stray_profile_ids;type:text[]"`
	StartedAt       time.Time      `gorm:"column:started_at;not null"`
	FinishedAt      time.Time      `gorm:"column:finished_at;not null"`
}

// TableName specifies the table name for the AuditRun model.
func (AuditRun) TableName() string {
	return "integrity_audits"
}

// Violations returns the total number of invariant breaches found in the run.
func (r *AuditRun) Violations() int {
	return len(r.OrphanedUserIDs) + len(r.StrayProfileIDs)
}
