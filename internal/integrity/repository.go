// File: internal/integrity/repository.go
package integrity

import (
	"context"
	"errors"

	"accounts_backend/internal/common"
	"accounts_backend/internal/profile"
	"accounts_backend/internal/user"

	"gorm.io/gorm"
)

// Repository defines the data access needed by the integrity audit: the
// invariant queries across users and profiles, plus persistence of the
// audit runs themselves.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountProfiles(ctx context.Context) (int64, error)
	// OrphanedUserIDs returns the IDs of users that have no profile.
	OrphanedUserIDs(ctx context.Context) ([]string, error)
	// StrayProfileIDs returns the IDs of profiles whose user no longer
	// exists.
	StrayProfileIDs(ctx context.Context) ([]string, error)
	CreateRun(ctx context.Context, run *AuditRun) error
	LatestRun(ctx context.Context) (*AuditRun, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM integrity repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Count(&count).Error
	return count, err
}

func (r *gormRepository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&profile.Profile{}).Count(&count).Error
	return count, err
}

func (r *gormRepository) OrphanedUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.id IS NULL").
		Pluck("users.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gormRepository) StrayProfileIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&profile.Profile{}).
		Joins("LEFT JOIN users ON users.id = profiles.user_id").
		Where("users.id IS NULL").
		Pluck("profiles.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gormRepository) CreateRun(ctx context.Context, run *AuditRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *gormRepository) LatestRun(ctx context.Context) (*AuditRun, error) {
	var run AuditRun
	err := r.db.WithContext(ctx).Order("finished_at DESC").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No audit runs recorded yet.")
		}
		return nil, err
	}
	return &run, nil
}
