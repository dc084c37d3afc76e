package content

import (
	"context"
	"fmt"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"gorm.io/gorm"
)

// Counter adjusts ContentItem.LikeCount with single server-side statements,
// so concurrent callers never lose an update.
type Counter struct {
	db *gorm.DB
}

// NewCounter creates a Counter.
func NewCounter(db *gorm.DB) *Counter {
	return &Counter{db: db}
}

// Apply adds delta to the like counter of contentID. Decrements are floored at 0.
// It is the retry path after a CounterError.
func (c *Counter) Apply(ctx context.Context, contentID int64, delta int64) error {
	if contentID <= 0 {
		return apperr.New(apperr.CodeInvalidArgument, "invalid content id")
	}
	if err := applyDelta(c.db.WithContext(ctx), contentID, delta); err != nil {
		return apperr.FromDB("update like counter", err)
	}
	return nil
}

// applyDelta never reads the counter back; RowsAffected is not checked
// because MySQL reports 0 when a floored decrement leaves the value unchanged.
func applyDelta(tx *gorm.DB, contentID int64, delta int64) error {
	q := tx.Model(&model.ContentItem{}).Where("id = ?", contentID)
	switch {
	case delta > 0:
		return q.UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
	case delta < 0:
		return q.UpdateColumn("like_count",
			gorm.Expr("CASE WHEN like_count > ? THEN like_count - ? ELSE 0 END", -delta, -delta)).Error
	default:
		return nil
	}
}

// CounterError reports a like or unlike whose ledger write was committed but
// whose counter update failed. Callers can retry Counter.Apply with Delta or
// run the Reconciler; the ledger is authoritative either way.
type CounterError struct {
	ContentID     int64
	Delta         int64
	LedgerApplied bool
	Err           error
}

func (e *CounterError) Error() string {
	return fmt.Sprintf("like counter for content %d not updated (delta %+d, ledger applied: %t): %v",
		e.ContentID, e.Delta, e.LedgerApplied, e.Err)
}

func (e *CounterError) Unwrap() error { return e.Err }
