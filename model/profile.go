package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the user-visible identity. ID equals the identity provider's subject.
type Profile struct {
	ID          uuid.UUID `gorm:"primaryKey;size:36" json:"id"`
	Handle      string    `gorm:"uniqueIndex;size:32;not null" json:"handle"`
	DisplayName string    `gorm:"size:64" json:"display_name"`
	Bio         string    `gorm:"type:text" json:"bio"`
	AvatarURL   string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
