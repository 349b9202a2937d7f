// File: internal/profile/model.go
package profile

import (
	"time"

	"accounts_backend/internal/common"

	"github.com/google/uuid"
)

// Profile is the per-user account profile. Exactly one exists per user;
// the unique index on UserID enforces the upper bound and provisioning
// creates the row in the same transaction as the user insert.
type Profile struct {
	common.BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Handle    string    `gorm:"type:varchar(120);not null;uniqueIndex"`
	APIKey    string    `gorm:"column:api_key;type:varchar(64);not null;uniqueIndex"`
	AvatarURL string    `gorm:"column:avatar_url;type:text"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// ProfileResponse defines the structure for profile data in API responses.
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Handle    string    `json:"handle"`
	APIKey    string    `json:"api_key"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToProfileResponse converts a Profile model to a ProfileResponse DTO.
func ToProfileResponse(prof *Profile) ProfileResponse {
	return ProfileResponse{
		ID:        prof.ID,
		UserID:    prof.UserID,
		Handle:    prof.Handle,
		APIKey:    prof.APIKey,
		AvatarURL: prof.AvatarURL,
		CreatedAt: prof.CreatedAt,
		UpdatedAt: prof.UpdatedAt,
	}
}
