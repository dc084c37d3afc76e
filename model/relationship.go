package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RelationshipStatus is the stored state of a friendship edge.
// An absent relationship is the absence of a row, never a status value.
type RelationshipStatus string

const (
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
)

// Relationship is a directed friend request (requester -> target) that
// becomes a symmetric friendship once accepted.
//
// PairLow/PairHigh hold the two party ids in canonical order so the unique
// index rejects a second row for the same two profiles in either direction.
type Relationship struct {
	ID          int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	RequesterID uuid.UUID          `gorm:"size:36;index:idx_rel_requester;not null" json:"requester_id"`
	TargetID    uuid.UUID          `gorm:"size:36;index:idx_rel_target;not null" json:"target_id"`
	PairLow     uuid.UUID          `gorm:"size:36;uniqueIndex:idx_rel_pair;not null" json:"-"`
	PairHigh    uuid.UUID          `gorm:"size:36;uniqueIndex:idx_rel_pair;not null" json:"-"`
	Status      RelationshipStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate fills the canonical pair key.
func (r *Relationship) BeforeCreate(_ *gorm.DB) error {
	r.PairLow, r.PairHigh = CanonicalPair(r.RequesterID, r.TargetID)
	return nil
}

// Involves reports whether id is one of the two parties.
func (r *Relationship) Involves(id uuid.UUID) bool {
	return r.RequesterID == id || r.TargetID == id
}

// Other returns the party that is not id.
func (r *Relationship) Other(id uuid.UUID) uuid.UUID {
	if r.RequesterID == id {
		return r.TargetID
	}
	return r.RequesterID
}

// CanonicalPair orders two ids so that (a,b) and (b,a) map to the same key.
func CanonicalPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
