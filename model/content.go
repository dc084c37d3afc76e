package model

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind discriminates posts by their media.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentVideo ContentKind = "video" // reels
)

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentText, ContentImage, ContentVideo:
		return true
	}
	return false
}

// ContentItem is a post or reel.
// LikeCount caches the number of LikeFact rows and is only changed through
// single-statement increments.
type ContentItem struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   uuid.UUID   `gorm:"size:36;index:idx_content_owner;not null" json:"owner_id"`
	Body      string      `gorm:"type:text" json:"body"`
	MediaURL  string      `gorm:"size:512" json:"media_url"`
	Kind      ContentKind `gorm:"size:16;not null;default:text" json:"kind"`
	LikeCount int64       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time   `gorm:"index:idx_content_created;autoCreateTime" json:"created_at"`
}

// LikeFact records that a profile likes a content item. It is the source of
// truth for ContentItem.LikeCount.
type LikeFact struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID uuid.UUID `gorm:"size:36;uniqueIndex:idx_like_profile_content;not null" json:"profile_id"`
	ContentID int64     `gorm:"uniqueIndex:idx_like_profile_content;index:idx_like_content;not null" json:"content_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
