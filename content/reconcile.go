package content

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/metrics"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recomputeSQL rewrites a counter from the ledger in one statement, so a like
// committed between detection and repair is still counted.
const recomputeSQL = `UPDATE content_items
SET like_count = (SELECT COUNT(*) FROM like_facts WHERE like_facts.content_id = content_items.id)
WHERE id = ?`

// Drift describes a content item whose counter disagreed with its ledger.
type Drift struct {
	ContentID int64 `json:"content_id"`
	LikeCount int64 `json:"like_count"`
	Facts     int64 `json:"facts"`
}

// Reconciler repairs like counters from LikeFact cardinality.
type Reconciler struct {
	db     *gorm.DB
	audit  auditor
	logger *zap.Logger
}

// NewReconciler creates a Reconciler. a may be nil.
func NewReconciler(db *gorm.DB, a auditor, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, audit: a, logger: logger}
}

// Reconcile recomputes the counter of one content item and reports whether it
// had drifted.
func (r *Reconciler) Reconcile(ctx context.Context, contentID int64) (bool, error) {
	var item model.ContentItem
	if err := r.db.WithContext(ctx).Select("id", "like_count").First(&item, contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.Wrap(apperr.CodeNotFound, "content not found", err)
		}
		return false, apperr.FromDB("load content", err)
	}
	var facts int64
	if err := r.db.WithContext(ctx).Model(&model.LikeFact{}).Where("content_id = ?", contentID).Count(&facts).Error; err != nil {
		return false, apperr.FromDB("count likes", err)
	}
	if facts == item.LikeCount {
		return false, nil
	}
	return true, r.repair(ctx, Drift{ContentID: contentID, LikeCount: item.LikeCount, Facts: facts})
}

// ReconcileAll finds every drifted counter with one aggregate query and
// repairs each. It returns the drifts it repaired.
func (r *Reconciler) ReconcileAll(ctx context.Context) ([]Drift, error) {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	var drifts []Drift
	err := r.db.WithContext(ctx).
		Table("content_items AS c").
		Select("c.id AS content_id, c.like_count AS like_count, COUNT(l.id) AS facts").
		Joins("LEFT JOIN like_facts AS l ON l.content_id = c.id").
		Group("c.id, c.like_count").
		Having("c.like_count <> COUNT(l.id)").
		Scan(&drifts).Error
	if err != nil {
		return nil, apperr.FromDB("scan like counters", err)
	}

	repaired := make([]Drift, 0, len(drifts))
	for _, d := range drifts {
		if err := r.repair(ctx, d); err != nil {
			return repaired, err
		}
		repaired = append(repaired, d)
	}
	if len(repaired) > 0 {
		r.logger.Info("like counters reconciled", zap.Int("repaired", len(repaired)))
	}
	return repaired, nil
}

func (r *Reconciler) repair(ctx context.Context, d Drift) error {
	if err := r.db.WithContext(ctx).Exec(recomputeSQL, d.ContentID).Error; err != nil {
		return apperr.FromDB("recompute like counter", err)
	}
	metrics.CounterRepairs.Inc()
	r.logger.Warn("like counter drift repaired",
		zap.Int64("content_id", d.ContentID),
		zap.Int64("like_count", d.LikeCount),
		zap.Int64("facts", d.Facts))
	if r.audit != nil {
		r.audit.Log(audit.Entry{
			TraceID:   audit.TraceID(ctx),
			Action:    audit.ActionCounterRepaired,
			SubjectID: d.ContentID,
			Detail:    d,
		})
	}
	return nil
}
