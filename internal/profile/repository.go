// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"strings"

	"accounts_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	// WithTx returns a repository bound to tx, so profile writes can join
	// an enclosing transaction such as the one around a user insert.
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, prof *Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository bound to the root
// database handle.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

// Create inserts a new profile record.
func (r *gormRepository) Create(ctx context.Context, prof *Profile) error {
	err := r.db.WithContext(ctx).Create(prof).Error
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "profiles_user_id_key") ||
				strings.Contains(err.Error(), "profiles.user_id") {
				return common.ErrConflict.WithDetails("A profile already exists for this user.")
			}
			return common.ErrConflict.WithDetails("Profile conflicts with an existing one.")
		}
		return err
	}
	return nil
}

// FindByUserID retrieves the profile belonging to the given user.
func (r *gormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var profileModel Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profileModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found for this user.")
		}
		return nil, err
	}
	return &profileModel, nil
}

// CountByUserID counts the profiles associated with the given user.
func (r *gormRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Profile{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
