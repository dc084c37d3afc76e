// Package social owns the friendship graph: the relationship state machine
// and the read-side queries over it.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/metrics"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Termination says why a relationship row was deleted. The row itself is
// gone afterwards; the kind only survives in the audit log.
type Termination string

const (
	TerminationRejected   Termination = "rejected"   // target declined a pending request
	TerminationCancelled  Termination = "cancelled"  // requester withdrew a pending request
	TerminationUnfriended Termination = "unfriended" // either party ended an accepted friendship
)

type auditor interface {
	Log(entry audit.Entry)
}

// Store enforces the relationship state machine:
//
//	(none) --CreateRequest--> pending --Accept(target)--> accepted
//	pending|accepted --Terminate(either party)--> (none)
type Store struct {
	db      *gorm.DB
	friends *friendCache
	audit   auditor
	logger  *zap.Logger
}

// NewStore creates a Store. c and a may be nil.
func NewStore(db *gorm.DB, c cache.Cache, a auditor, logger *zap.Logger) *Store {
	s := &Store{db: db, audit: a, logger: logger}
	if c != nil {
		s.friends = &friendCache{c: c, logger: logger}
	}
	return s
}

// CreateRequest records a pending friend request from requester to target and
// returns its id. A second request for the same two profiles, in either
// direction, fails with a Conflict; the unique pair index decides races.
func (s *Store) CreateRequest(ctx context.Context, requester, target uuid.UUID) (int64, error) {
	if requester == uuid.Nil || target == uuid.Nil {
		return 0, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	if requester == target {
		return 0, apperr.New(apperr.CodeInvalidArgument, "cannot send a friend request to yourself")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Profile{}).Where("id = ?", target).Count(&n).Error; err != nil {
		return 0, apperr.FromDB("load target profile", err)
	}
	if n == 0 {
		return 0, apperr.New(apperr.CodeNotFound, "target profile not found")
	}

	existing, err := s.FindBetween(ctx, requester, target)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.New(apperr.CodeConflict, "relationship already exists")
	}

	rel := &model.Relationship{
		RequesterID: requester,
		TargetID:    target,
		Status:      model.RelationshipPending,
	}
	if err := db.Create(rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Wrap(apperr.CodeConflict, "relationship already exists", err)
		}
		return 0, apperr.FromDB("create relationship", err)
	}

	metrics.RelationshipTransitions.WithLabelValues("requested").Inc()
	s.record(ctx, requester, audit.ActionFriendRequested, rel)
	s.logger.Debug("friend request created",
		zap.Int64("relationship_id", rel.ID),
		zap.Stringer("requester", requester),
		zap.Stringer("target", target))
	return rel.ID, nil
}

// Accept moves a pending relationship to accepted. Only the target may accept,
// and only once.
func (s *Store) Accept(ctx context.Context, id int64, actor uuid.UUID) error {
	rel, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if rel.TargetID != actor {
		return apperr.New(apperr.CodeForbidden, "only the request target can accept")
	}

	switch rel.Status {
	case model.RelationshipPending:
		res := s.db.WithContext(ctx).Model(&model.Relationship{}).
			Where("id = ? AND status = ?", id, model.RelationshipPending).
			Update("status", model.RelationshipAccepted)
		if res.Error != nil {
			return apperr.FromDB("accept relationship", res.Error)
		}
		if res.RowsAffected == 0 {
			// Accepted or deleted by another session between load and update.
			return apperr.New(apperr.CodeInvalidState, "relationship is no longer pending")
		}
	case model.RelationshipAccepted:
		return apperr.New(apperr.CodeInvalidState, "relationship already accepted")
	default:
		return apperr.New(apperr.CodeInvalidState, fmt.Sprintf("unexpected relationship status %q", rel.Status))
	}

	rel.Status = model.RelationshipAccepted
	s.invalidate(ctx, rel.RequesterID, rel.TargetID)
	metrics.RelationshipTransitions.WithLabelValues("accepted").Inc()
	s.record(ctx, actor, audit.ActionFriendAccepted, rel)
	return nil
}

// Terminate deletes the relationship. Either party may call it from pending
// or accepted, which covers reject, cancel and unfriend.
func (s *Store) Terminate(ctx context.Context, id int64, actor uuid.UUID) error {
	rel, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !rel.Involves(actor) {
		return apperr.New(apperr.CodeForbidden, "not a party to this relationship")
	}
	kind, ok := classifyTermination(rel, actor)
	if !ok {
		s.logger.Warn("terminate on unknown relationship status",
			zap.Int64("relationship_id", rel.ID), zap.String("status", string(rel.Status)))
		return apperr.New(apperr.CodeInvalidState, fmt.Sprintf("unexpected relationship status %q", rel.Status))
	}

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Relationship{})
	if res.Error != nil {
		return apperr.FromDB("delete relationship", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "relationship not found")
	}

	s.invalidate(ctx, rel.RequesterID, rel.TargetID)
	metrics.RelationshipTransitions.WithLabelValues(string(kind)).Inc()
	s.record(ctx, actor, terminationAction(kind), rel)
	return nil
}

// FindBetween returns the single relationship for the unordered pair {a, b},
// or nil when there is none.
func (s *Store) FindBetween(ctx context.Context, a, b uuid.UUID) (*model.Relationship, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	low, high := model.CanonicalPair(a, b)
	var rels []model.Relationship
	err := s.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		Limit(1).
		Find(&rels).Error
	if err != nil {
		return nil, apperr.FromDB("find relationship", err)
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return &rels[0], nil
}

func (s *Store) load(ctx context.Context, id int64) (*model.Relationship, error) {
	if id <= 0 {
		return nil, apperr.New(apperr.CodeInvalidArgument, "invalid relationship id")
	}
	var rel model.Relationship
	if err := s.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.CodeNotFound, "relationship not found", err)
		}
		return nil, apperr.FromDB("load relationship", err)
	}
	return &rel, nil
}

func (s *Store) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.friends != nil {
		s.friends.bump(ctx, ids...)
	}
}

func (s *Store) record(ctx context.Context, actor uuid.UUID, action string, rel *model.Relationship) {
	if s.audit == nil {
		return
	}
	s.audit.Log(audit.Entry{
		TraceID:   audit.TraceID(ctx),
		ActorID:   audit.ActorID(actor),
		Action:    action,
		SubjectID: rel.ID,
		Detail: map[string]interface{}{
			"requester_id": rel.RequesterID,
			"target_id":    rel.TargetID,
			"status":       rel.Status,
		},
	})
}

func classifyTermination(rel *model.Relationship, actor uuid.UUID) (Termination, bool) {
	switch rel.Status {
	case model.RelationshipPending:
		if actor == rel.TargetID {
			return TerminationRejected, true
		}
		return TerminationCancelled, true
	case model.RelationshipAccepted:
		return TerminationUnfriended, true
	}
	return "", false
}

func terminationAction(kind Termination) string {
	switch kind {
	case TerminationRejected:
		return audit.ActionFriendRejected
	case TerminationUnfriended:
		return audit.ActionFriendUnfriended
	default:
		return audit.ActionFriendCancelled
	}
}
