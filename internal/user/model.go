// File: internal/user/model.go
package user

import (
	"time"

	"accounts_backend/internal/common"
	"accounts_backend/internal/profile"

	"github.com/google/uuid"
)

// User represents the user model in the database. Credentials and external
// identities are out of scope for this service; a user is an email plus an
// optional display name.
type User struct {
	common.BaseModel        // Embeds ID, CreatedAt, UpdatedAt
	Email            string `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName      string `gorm:"type:varchar(100)"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// --- DTOs for API requests/responses ---

// CreateUserRequest defines the structure for registering a new user.
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name,omitempty" binding:"omitempty,max=100"`
}

// UpdateUserRequest defines the structure for partial user updates.
// Pointer fields distinguish "not sent" from "set to empty".
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=100"`
}

// UserResponse defines the structure for user data sent in API responses.
// The profile is included whenever one exists, which for a healthy system
// is always.
type UserResponse struct {
	ID          uuid.UUID                `json:"id"`
	Email       string                   `json:"email"`
	DisplayName string                   `json:"display_name,omitempty"`
	Profile     *profile.ProfileResponse `json:"profile,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// ToUserResponse converts a User model and its profile to a UserResponse DTO.
func ToUserResponse(usr *User, prof *profile.Profile) UserResponse {
	resp := UserResponse{
		ID:          usr.ID,
		Email:       usr.Email,
		DisplayName: usr.DisplayName,
		CreatedAt:   usr.CreatedAt,
		UpdatedAt:   usr.UpdatedAt,
	}
	if prof != nil {
		profResp := profile.ToProfileResponse(prof)
		resp.Profile = &profResp
	}
	return resp
}
