package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/pkg/enums"
)

// UserProfile is an organization member. The ID doubles as the auth subject.
type UserProfile struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID uuid.UUID      `gorm:"column:organization_id;type:uuid;not null;index"`
	Email          string         `gorm:"column:email;not null;uniqueIndex"`
	DisplayName    *string        `gorm:"column:display_name"`
	Role           enums.UserRole `gorm:"column:role;type:user_role;not null;default:user"`
	PasswordHash   string         `gorm:"column:password_hash;not null"`
	LastActive     time.Time      `gorm:"column:last_active;autoCreateTime"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
