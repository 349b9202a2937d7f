// File: internal/user/service_test.go
package user

import (
	"context"
	"testing"
	"time"

	"accounts_backend/internal/common"
	"accounts_backend/internal/config"
	"accounts_backend/internal/profile"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockUserRepository is a mock type for user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) AfterSave(hook SavedHook) {
	m.Called(hook)
}

func (m *MockUserRepository) Create(ctx context.Context, usr *User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, usr *User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// MockProfileRepository is a mock type for profile.Repository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) WithTx(tx *gorm.DB) profile.Repository {
	args := m.Called(tx)
	return args.Get(0).(profile.Repository)
}

func (m *MockProfileRepository) Create(ctx context.Context, prof *profile.Profile) error {
	args := m.Called(ctx, prof)
	return args.Error(0)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func newServiceUnderTest() (*ServiceImplementation, *MockUserRepository, *MockProfileRepository) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)
	cfg := &config.Config{DefaultAvatarURL: "/static/avatars/default.jpg"}
	svc := NewService(userRepo, profileRepo, cfg, zap.NewNop())
	return svc, userRepo, profileRepo
}

func profileFor(userID uuid.UUID) *profile.Profile {
	now := time.Now()
	return &profile.Profile{
		BaseModel: common.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		Handle:    "alice-deadbeef",
		APIKey:    "test-api-key",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()
	req := CreateUserRequest{Email: "alice@example.com", DisplayName: "Alice"}

	userRepo.On("FindByEmail", ctx, req.Email).Return(nil, common.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	profileRepo.On("FindByUserID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(profileFor(uuid.New()), nil)

	usr, prof, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, usr)
	require.NotNil(t, prof)
	assert.Equal(t, req.Email, usr.Email)
	assert.Equal(t, req.DisplayName, usr.DisplayName)
	assert.NotEqual(t, uuid.Nil, usr.ID)

	userRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()
	req := CreateUserRequest{Email: "taken@example.com"}

	existing := &User{Email: req.Email}
	userRepo.On("FindByEmail", ctx, req.Email).Return(existing, nil)

	_, _, err := svc.Register(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	profileRepo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestRegister_CreateFailurePropagates(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()
	req := CreateUserRequest{Email: "boom@example.com"}

	createErr := common.ErrConflict.WithDetails("A profile already exists for this user.")
	userRepo.On("FindByEmail", ctx, req.Email).Return(nil, common.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(createErr)

	_, _, err := svc.Register(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	profileRepo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestRegister_MissingProfileAfterCommitIsInternalError(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()
	req := CreateUserRequest{Email: "ghost@example.com"}

	userRepo.On("FindByEmail", ctx, req.Email).Return(nil, common.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	profileRepo.On("FindByUserID", ctx, mock.AnythingOfType("uuid.UUID")).
		Return(nil, common.ErrNotFound)

	_, _, err := svc.Register(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternalServer)
}

func TestUpdate_PatchesOnlyProvidedFields(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()

	id := uuid.New()
	existing := &User{
		BaseModel:   common.BaseModel{ID: id},
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}
	newName := "Alice Cooper"

	userRepo.On("FindByID", ctx, id).Return(existing, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	profileRepo.On("FindByUserID", ctx, id).Return(profileFor(id), nil)

	usr, prof, err := svc.Update(ctx, id, UpdateUserRequest{DisplayName: &newName})
	require.NoError(t, err)
	require.NotNil(t, prof)
	assert.Equal(t, newName, usr.DisplayName)
	assert.Equal(t, "alice@example.com", usr.Email, "email must be untouched when not sent")
}

func TestUpdate_UnknownUser(t *testing.T) {
	svc, userRepo, _ := newServiceUnderTest()
	ctx := context.Background()
	id := uuid.New()

	userRepo.On("FindByID", ctx, id).Return(nil, common.ErrNotFound)

	_, _, err := svc.Update(ctx, id, UpdateUserRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetByID_ReturnsUserWithProfile(t *testing.T) {
	svc, userRepo, profileRepo := newServiceUnderTest()
	ctx := context.Background()

	id := uuid.New()
	existing := &User{BaseModel: common.BaseModel{ID: id}, Email: "alice@example.com"}
	userRepo.On("FindByID", ctx, id).Return(existing, nil)
	profileRepo.On("FindByUserID", ctx, id).Return(profileFor(id), nil)

	usr, prof, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, usr.ID)
	require.NotNil(t, prof)
	assert.Equal(t, id, prof.UserID)
}
