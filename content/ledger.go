package content

import (
	"context"
	"errors"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/metrics"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditor interface {
	Log(entry audit.Entry)
}

// errNoLike aborts an unlike transaction when there was nothing to delete.
var errNoLike = errors.New("no like to remove")

// Ledger owns the LikeFact table and keeps ContentItem.LikeCount in step with it.
//
// With transactional set, the ledger write and the counter update commit
// together. Without it they are two statements, and a failed counter update
// is reported as a *CounterError.
type Ledger struct {
	db            *gorm.DB
	counter       *Counter
	transactional bool
	audit         auditor
	logger        *zap.Logger
}

// NewLedger creates a Ledger. a may be nil.
func NewLedger(db *gorm.DB, counter *Counter, cfg config.ContentConfig, a auditor, logger *zap.Logger) *Ledger {
	return &Ledger{
		db:            db,
		counter:       counter,
		transactional: cfg.TransactionalLike,
		audit:         a,
		logger:        logger,
	}
}

// Like records that profileID likes contentID and increments its counter.
// Liking twice fails with a Conflict and does not touch the counter.
func (l *Ledger) Like(ctx context.Context, profileID uuid.UUID, contentID int64) error {
	err := l.like(ctx, profileID, contentID)
	metrics.LikeOperations.WithLabelValues("like", resultLabel(err)).Inc()
	return err
}

func (l *Ledger) like(ctx context.Context, profileID uuid.UUID, contentID int64) error {
	if err := l.ensureContent(ctx, profileID, contentID); err != nil {
		return err
	}
	fact := &model.LikeFact{ProfileID: profileID, ContentID: contentID}

	if l.transactional {
		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := insertFact(tx, fact); err != nil {
				return err
			}
			if err := applyDelta(tx, contentID, 1); err != nil {
				return apperr.FromDB("update like counter", err)
			}
			return nil
		})
		return classify("commit like", err)
	}

	if err := insertFact(l.db.WithContext(ctx), fact); err != nil {
		return err
	}
	if err := l.counter.Apply(ctx, contentID, 1); err != nil {
		return l.counterFailed(ctx, profileID, contentID, 1, err)
	}
	return nil
}

// Unlike removes the like of profileID on contentID and decrements the
// counter, floored at 0. Unliking something not liked is a no-op.
func (l *Ledger) Unlike(ctx context.Context, profileID uuid.UUID, contentID int64) error {
	err := l.unlike(ctx, profileID, contentID)
	metrics.LikeOperations.WithLabelValues("unlike", resultLabel(err)).Inc()
	return err
}

func (l *Ledger) unlike(ctx context.Context, profileID uuid.UUID, contentID int64) error {
	if err := l.ensureContent(ctx, profileID, contentID); err != nil {
		return err
	}

	if l.transactional {
		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			removed, err := deleteFact(tx, profileID, contentID)
			if err != nil {
				return err
			}
			if !removed {
				return errNoLike
			}
			if err := applyDelta(tx, contentID, -1); err != nil {
				return apperr.FromDB("update like counter", err)
			}
			return nil
		})
		if errors.Is(err, errNoLike) {
			return nil
		}
		return classify("commit unlike", err)
	}

	removed, err := deleteFact(l.db.WithContext(ctx), profileID, contentID)
	if err != nil || !removed {
		return err
	}
	if err := l.counter.Apply(ctx, contentID, -1); err != nil {
		return l.counterFailed(ctx, profileID, contentID, -1, err)
	}
	return nil
}

// IsLiked reports whether profileID currently likes contentID.
func (l *Ledger) IsLiked(ctx context.Context, profileID uuid.UUID, contentID int64) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.LikeFact{}).
		Where("profile_id = ? AND content_id = ?", profileID, contentID).
		Count(&n).Error
	if err != nil {
		return false, apperr.FromDB("check like", err)
	}
	return n > 0, nil
}

// Likers returns up to limit profile ids that like contentID, most recent first.
func (l *Ledger) Likers(ctx context.Context, contentID int64, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 50
	}
	var facts []model.LikeFact
	err := l.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("id DESC").
		Limit(limit).
		Find(&facts).Error
	if err != nil {
		return nil, apperr.FromDB("list likers", err)
	}
	return lo.Map(facts, func(f model.LikeFact, _ int) uuid.UUID { return f.ProfileID }), nil
}

// LikedAmong returns the subset of contentIDs that profileID likes.
func (l *Ledger) LikedAmong(ctx context.Context, profileID uuid.UUID, contentIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(contentIDs))
	if len(contentIDs) == 0 {
		return out, nil
	}
	var facts []model.LikeFact
	err := l.db.WithContext(ctx).
		Where("profile_id = ? AND content_id IN ?", profileID, contentIDs).
		Find(&facts).Error
	if err != nil {
		return nil, apperr.FromDB("list likes", err)
	}
	for _, f := range facts {
		out[f.ContentID] = true
	}
	return out, nil
}

func (l *Ledger) ensureContent(ctx context.Context, profileID uuid.UUID, contentID int64) error {
	if profileID == uuid.Nil {
		return apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	if contentID <= 0 {
		return apperr.New(apperr.CodeInvalidArgument, "invalid content id")
	}
	var n int64
	if err := l.db.WithContext(ctx).Model(&model.ContentItem{}).Where("id = ?", contentID).Count(&n).Error; err != nil {
		return apperr.FromDB("load content", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, "content not found")
	}
	return nil
}

func (l *Ledger) counterFailed(ctx context.Context, profileID uuid.UUID, contentID, delta int64, cause error) error {
	l.logger.Error("like counter update failed after ledger write",
		zap.Int64("content_id", contentID),
		zap.Int64("delta", delta),
		zap.Error(cause))
	if l.audit != nil {
		l.audit.Log(audit.Entry{
			TraceID:   audit.TraceID(ctx),
			ActorID:   audit.ActorID(profileID),
			Action:    audit.ActionCounterFailed,
			SubjectID: contentID,
			Detail:    map[string]int64{"delta": delta},
			Error:     cause.Error(),
		})
	}
	return &CounterError{
		ContentID:     contentID,
		Delta:         delta,
		LedgerApplied: true,
		Err:           cause,
	}
}

// classify leaves already-classified errors alone and maps the rest
// (for example a failed commit) through apperr.FromDB.
func classify(message string, err error) error {
	if err == nil || apperr.CodeOf(err) != apperr.CodeUnknown {
		return err
	}
	return apperr.FromDB(message, err)
}

func insertFact(tx *gorm.DB, fact *model.LikeFact) error {
	if err := tx.Create(fact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Wrap(apperr.CodeConflict, "content already liked", err)
		}
		return apperr.FromDB("insert like", err)
	}
	return nil
}

func deleteFact(tx *gorm.DB, profileID uuid.UUID, contentID int64) (bool, error) {
	res := tx.Where("profile_id = ? AND content_id = ?", profileID, contentID).Delete(&model.LikeFact{})
	if res.Error != nil {
		return false, apperr.FromDB("delete like", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *CounterError
	if errors.As(err, &ce) {
		return "counter_failed"
	}
	return apperr.CodeOf(err).String()
}
