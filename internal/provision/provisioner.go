// File: internal/provision/provisioner.go

// Package provision owns the guarantee that every created user ends up with
// exactly one profile. The Provisioner is wired to the user repository's
// after-save hook during startup assembly; nothing else creates profiles.
package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"accounts_backend/internal/common"
	"accounts_backend/internal/config"
	"accounts_backend/internal/platform/crypto"
	"accounts_backend/internal/profile"
	"accounts_backend/internal/user"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProvisioningError reports a failed profile provisioning attempt. It
// propagates to whoever initiated the user creation; the enclosing
// transaction rolls back, so a failed attempt leaves neither the user row
// nor a profile behind.
type ProvisioningError struct {
	UserID uuid.UUID
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("profile provisioning failed for user %s: %v", e.UserID, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// Provisioner creates the profile for newly persisted users.
type Provisioner struct {
	profiles profile.Repository
	cfg      *config.Config
	logger   *zap.Logger
}

// NewProvisioner creates a new Provisioner.
func NewProvisioner(profiles profile.Repository, cfg *config.Config, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.Named("Provisioner"),
	}
}

// UserSaved is a user.SavedHook. When the save was an insert it creates
// exactly one profile through the supplied transaction handle; updates are
// ignored entirely. It never writes to the user store.
func (p *Provisioner) UserSaved(ctx context.Context, tx *gorm.DB, usr *user.User, created bool) error {
	if !created {
		return nil
	}

	apiKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return &ProvisioningError{UserID: usr.ID, Err: fmt.Errorf("could not generate API key: %w", err)}
	}

	currentTime := time.Now()
	prof := &profile.Profile{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: currentTime,
			UpdatedAt: currentTime,
		},
		UserID:    usr.ID,
		Handle:    handleFor(usr),
		APIKey:    apiKey,
		AvatarURL: p.cfg.DefaultAvatarURL,
	}

	if err := p.profiles.WithTx(tx).Create(ctx, prof); err != nil {
		p.logger.Error("Profile provisioning failed",
			zap.String("userID", usr.ID.String()),
			zap.Error(err),
		)
		return &ProvisioningError{UserID: usr.ID, Err: err}
	}

	p.logger.Info("Profile provisioned",
		zap.String("userID", usr.ID.String()),
		zap.String("profileID", prof.ID.String()),
		zap.String("handle", prof.Handle),
	)
	return nil
}

// handleFor derives a URL-safe public handle. The user ID suffix keeps two
// users with the same display name from colliding on the unique index.
func handleFor(usr *user.User) string {
	suffix := strings.ReplaceAll(usr.ID.String(), "-", "")[:8]
	base := slug.Make(usr.DisplayName)
	if base == "" {
		return "user-" + suffix
	}
	return base + "-" + suffix
}
