// File: tests/integration/user_service_integration_test.go
package integration_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"accounts_backend/internal/common"
	"accounts_backend/internal/config"
	"accounts_backend/internal/integrity"
	"accounts_backend/internal/platform/database"
	"accounts_backend/internal/profile"
	"accounts_backend/internal/provision"
	"accounts_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceStack struct {
	db          *gorm.DB
	userRepo    user.Repository
	profileRepo profile.Repository
	service     *user.ServiceImplementation
}

// setupServiceStack wires service, repositories, and provisioner exactly
// like process startup does. wrapProfiles lets a test interpose on the
// profile repository the provisioner writes through.
func setupServiceStack(t *testing.T, wrapProfiles func(profile.Repository) profile.Repository) *serviceStack {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")

	cfg := &config.Config{DefaultAvatarURL: "/static/avatars/default.jpg"}
	appLogger := zap.NewNop()

	userRepo := user.NewGORMRepository(db)
	profileRepo := profile.NewGORMRepository(db)

	provisionerRepo := profileRepo
	if wrapProfiles != nil {
		provisionerRepo = wrapProfiles(profileRepo)
	}
	provisioner := provision.NewProvisioner(provisionerRepo, cfg, appLogger)
	userRepo.AfterSave(provisioner.UserSaved)

	return &serviceStack{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		service:     user.NewService(userRepo, profileRepo, cfg, appLogger),
	}
}

func (s *serviceStack) profileCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	count, err := s.profileRepo.CountByUserID(context.Background(), userID)
	require.NoError(t, err)
	return count
}

// failingProfileRepo rejects every create, simulating a broken profile
// store underneath the provisioner.
type failingProfileRepo struct {
	profile.Repository
	err error
}

func (f *failingProfileRepo) WithTx(tx *gorm.DB) profile.Repository {
	return &failingProfileRepo{Repository: f.Repository.WithTx(tx), err: f.err}
}

func (f *failingProfileRepo) Create(ctx context.Context, prof *profile.Profile) error {
	return f.err
}

func TestRegister_EveryUserGetsExactlyOneProfile(t *testing.T) {
	stack := setupServiceStack(t, nil)
	ctx := context.Background()

	usr, prof, err := stack.service.Register(ctx, user.CreateUserRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, usr.ID, prof.UserID)
	assert.Equal(t, int64(1), stack.profileCount(t, usr.ID))

	// A second, unrelated registration provisions its own independent row.
	other, otherProf, err := stack.service.Register(ctx, user.CreateUserRequest{
		Email: "bob@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, prof.ID, otherProf.ID)
	assert.Equal(t, int64(1), stack.profileCount(t, other.ID))
}

func TestUpdate_RepeatedUpdatesNeverChangeProfileCount(t *testing.T) {
	stack := setupServiceStack(t, nil)
	ctx := context.Background()

	usr, prof, err := stack.service.Register(ctx, user.CreateUserRequest{
		Email:       "alice@example.com",
		DisplayName: "alice",
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("alice%d", i)
		_, updatedProf, err := stack.service.Update(ctx, usr.ID, user.UpdateUserRequest{DisplayName: &name})
		require.NoError(t, err)
		require.NotNil(t, updatedProf)
		assert.Equal(t, prof.ID, updatedProf.ID, "the profile must survive updates unchanged")
		assert.Equal(t, int64(1), stack.profileCount(t, usr.ID))
	}
}

func TestRegister_ProfileStoreFailureRollsBackUser(t *testing.T) {
	storeErr := errors.New("profile store unavailable")
	stack := setupServiceStack(t, func(real profile.Repository) profile.Repository {
		return &failingProfileRepo{Repository: real, err: storeErr}
	})
	ctx := context.Background()

	_, _, err := stack.service.Register(ctx, user.CreateUserRequest{Email: "doomed@example.com"})
	require.Error(t, err)

	var provErr *provision.ProvisioningError
	require.ErrorAs(t, err, &provErr, "the caller must see the provisioning failure")
	assert.ErrorIs(t, err, storeErr)

	// Atomicity: neither the user nor any profile row survived.
	_, findErr := stack.userRepo.FindByEmail(ctx, "doomed@example.com")
	assert.ErrorIs(t, findErr, common.ErrNotFound)

	var profiles int64
	require.NoError(t, stack.db.Model(&profile.Profile{}).Count(&profiles).Error)
	assert.Zero(t, profiles)
}

func TestRepositoryCreate_DuplicateAssociationFailsAtomically(t *testing.T) {
	stack := setupServiceStack(t, nil)
	ctx := context.Background()

	// Force the duplicate-key path: a profile already claims the ID the
	// next user will be created with.
	takenID := uuid.New()
	require.NoError(t, stack.profileRepo.Create(ctx, &profile.Profile{
		BaseModel: common.BaseModel{ID: uuid.New()},
		UserID:    takenID,
		Handle:    "squatter",
		APIKey:    "squatter-key",
	}))

	usr := &user.User{
		BaseModel: common.BaseModel{ID: takenID},
		Email:     "victim@example.com",
	}
	err := stack.userRepo.Create(ctx, usr)
	require.Error(t, err)

	var provErr *provision.ProvisioningError
	require.ErrorAs(t, err, &provErr)
	assert.ErrorIs(t, err, common.ErrConflict)

	// The user insert rolled back with the failed provisioning.
	_, findErr := stack.userRepo.FindByEmail(ctx, "victim@example.com")
	assert.ErrorIs(t, findErr, common.ErrNotFound)
}

func TestConcreteScenario_AliceRenameKeepsOneProfile(t *testing.T) {
	stack := setupServiceStack(t, nil)
	ctx := context.Background()

	usr, prof, err := stack.service.Register(ctx, user.CreateUserRequest{
		Email:       "alice@example.com",
		DisplayName: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), stack.profileCount(t, usr.ID))

	rename := "alice2"
	updated, updatedProf, err := stack.service.Update(ctx, usr.ID, user.UpdateUserRequest{DisplayName: &rename})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.DisplayName)
	assert.Equal(t, prof.ID, updatedProf.ID)
	assert.Equal(t, int64(1), stack.profileCount(t, usr.ID))

	// The audit agrees the store is clean afterwards.
	auditService := integrity.NewService(integrity.NewGORMRepository(stack.db), zap.NewNop())
	run, err := auditService.RunAudit(ctx)
	require.NoError(t, err)
	assert.Zero(t, run.Violations())
}
