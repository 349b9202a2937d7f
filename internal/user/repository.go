// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"

	"accounts_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedHook runs inside the transaction that persisted usr, after the row
// was written and before the transaction commits. created reports whether
// the write was an insert. Returning an error aborts the transaction, user
// row included.
type SavedHook func(ctx context.Context, tx *gorm.DB, usr *User, created bool) error

// Repository defines the interface for user data operations.
type Repository interface {
	// AfterSave registers a hook fired on every successful insert or update.
	// Registration happens once during startup wiring; it is not safe to
	// call concurrently with Create or Update.
	AfterSave(hook SavedHook)
	Create(ctx context.Context, usr *User) error
	Update(ctx context.Context, usr *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type gormRepository struct {
	db    *gorm.DB
	hooks []SavedHook
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) AfterSave(hook SavedHook) {
	r.hooks = append(r.hooks, hook)
}

func (r *gormRepository) fireHooks(ctx context.Context, tx *gorm.DB, usr *User, created bool) error {
	for _, hook := range r.hooks {
		if err := hook(ctx, tx, usr, created); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a new user record and fires the after-save hooks with
// created=true. Insert and hooks share one transaction: if a hook fails,
// the user row is rolled back with it, and hooks never observe a creation
// that did not commit.
func (r *gormRepository) Create(ctx context.Context, usr *User) error {
	usr.Email = strings.ToLower(strings.TrimSpace(usr.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(usr).Error; err != nil {
			return err
		}
		return r.fireHooks(ctx, tx, usr, true)
	})
	if err != nil {
		// Hook errors arrive already shaped; pass them through untouched.
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("User with this email already exists.")
		}
		return err
	}
	return nil
}

// Update saves an existing user record and fires the after-save hooks with
// created=false, inside one transaction with the write.
func (r *gormRepository) Update(ctx context.Context, usr *User) error {
	usr.Email = strings.ToLower(strings.TrimSpace(usr.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(usr).Error; err != nil {
			return err
		}
		return r.fireHooks(ctx, tx, usr, false)
	})
	if err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var userModel User
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Where("email = ?", normalizedEmail).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this email.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &userModel, nil
}

// isUniqueViolation matches the driver-specific unique constraint errors:
// postgres in production, sqlite in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
