package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message. Only Read ever changes, and only false -> true.
type Message struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   uuid.UUID `gorm:"size:36;index:idx_msg_pair;not null" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"size:36;index:idx_msg_pair;index:idx_msg_receiver;not null" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Read       bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt  time.Time `gorm:"index:idx_msg_created;autoCreateTime" json:"created_at"`
}
