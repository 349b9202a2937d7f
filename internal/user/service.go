package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts_backend/internal/common"
	"accounts_backend/internal/config"
	"accounts_backend/internal/profile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the user-facing operations of the accounts API.
type Service interface {
	Register(ctx context.Context, req CreateUserRequest) (*User, *profile.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, *profile.Profile, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, *profile.Profile, error)
}

// ServiceImplementation implements the Service interface. It reads profiles
// for response composition but never writes them; profile creation belongs
// to the provisioner hooked into the repository.
type ServiceImplementation struct {
	repo     Repository
	profiles profile.Repository
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(
	repo Repository,
	profiles profile.Repository,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates a new user. The repository fires the after-save hooks
// inside the insert transaction, so when this returns without error the
// user's profile exists too.
func (s *ServiceImplementation) Register(ctx context.Context, req CreateUserRequest) (*User, *profile.Profile, error) {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, common.ErrConflict.WithDetails("User with this email already exists.")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}

	currentTime := time.Now()
	usr := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: currentTime,
			UpdatedAt: currentTime,
		},
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}

	if err := s.repo.Create(ctx, usr); err != nil {
		s.logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", req.Email),
		)
		return nil, nil, err
	}

	prof, err := s.profiles.FindByUserID(ctx, usr.ID)
	if err != nil {
		// The creation transaction committed, so the profile must exist.
		s.logger.Error("Provisioned profile missing right after registration",
			zap.Error(err),
			zap.String("userID", usr.ID.String()),
		)
		return nil, nil, common.ErrInternalServer.WithDetails("Account was created but could not be read back.")
	}

	s.logger.Info("User registered",
		zap.String("userID", usr.ID.String()),
		zap.String("profileID", prof.ID.String()),
	)
	return usr, prof, nil
}

// GetByID fetches a user together with their profile. A missing profile is
// an invariant breach; it is logged and the user is returned without one so
// reads stay available while the integrity audit surfaces the damage.
func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*User, *profile.Profile, error) {
	usr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	prof, err := s.profiles.FindByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("User has no profile", zap.String("userID", id.String()))
			return usr, nil, nil
		}
		return nil, nil, err
	}
	return usr, prof, nil
}

// Update applies a partial update. The repository fires the after-save
// hooks with created=false, so no second profile is ever provisioned here.
func (s *ServiceImplementation) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, *profile.Profile, error) {
	usr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if req.Email != nil {
		usr.Email = *req.Email
	}
	if req.DisplayName != nil {
		usr.DisplayName = *req.DisplayName
	}
	usr.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, usr); err != nil {
		s.logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("userID", id.String()),
		)
		return nil, nil, err
	}

	prof, err := s.profiles.FindByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("User has no profile", zap.String("userID", id.String()))
			prof = nil
		} else {
			return nil, nil, err
		}
	}

	s.logger.Info("User updated", zap.String("userID", id.String()))
	return usr, prof, nil
}
