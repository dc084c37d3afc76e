// Package content manages posts and reels, the like ledger, and the
// denormalized like counter kept on each item.
package content

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FriendLister supplies the ids whose content appears in a viewer's feed.
type FriendLister interface {
	FriendIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
}

// Service creates, reads and deletes content items.
type Service struct {
	db        *gorm.DB
	friends   FriendLister
	feedLimit int
	logger    *zap.Logger
}

// NewService creates a content Service.
func NewService(db *gorm.DB, friends FriendLister, cfg config.ContentConfig, logger *zap.Logger) *Service {
	limit := cfg.FeedLimit
	if limit <= 0 {
		limit = 30
	}
	return &Service{db: db, friends: friends, feedLimit: limit, logger: logger}
}

// Create publishes a content item owned by owner. An empty kind is inferred
// from the presence of media.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, body, mediaURL string, kind model.ContentKind) (*model.ContentItem, error) {
	if owner == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "owner id is required")
	}
	body = strings.TrimSpace(body)
	mediaURL = strings.TrimSpace(mediaURL)
	if body == "" && mediaURL == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "content needs a body or media")
	}
	if kind == "" {
		kind = model.ContentText
		if mediaURL != "" {
			kind = model.ContentImage
		}
	}
	if !kind.Valid() {
		return nil, apperr.New(apperr.CodeInvalidArgument, "unknown content kind")
	}
	if kind != model.ContentText && mediaURL == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "media content needs a media url")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Profile{}).Where("id = ?", owner).Count(&n).Error; err != nil {
		return nil, apperr.FromDB("load owner profile", err)
	}
	if n == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "owner profile not found")
	}

	item := &model.ContentItem{OwnerID: owner, Body: body, MediaURL: mediaURL, Kind: kind}
	if err := db.Create(item).Error; err != nil {
		return nil, apperr.FromDB("create content", err)
	}
	return item, nil
}

// Get returns one content item.
func (s *Service) Get(ctx context.Context, id int64) (*model.ContentItem, error) {
	if id <= 0 {
		return nil, apperr.New(apperr.CodeInvalidArgument, "invalid content id")
	}
	var item model.ContentItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.CodeNotFound, "content not found", err)
		}
		return nil, apperr.FromDB("load content", err)
	}
	return &item, nil
}

// Feed returns the newest items by viewer and viewer's friends. kind filters
// when non-empty (video gives the reels feed); before is an id cursor, 0 for
// the first page.
func (s *Service) Feed(ctx context.Context, viewer uuid.UUID, kind model.ContentKind, before int64, limit int) ([]model.ContentItem, error) {
	if viewer == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "viewer id is required")
	}
	if kind != "" && !kind.Valid() {
		return nil, apperr.New(apperr.CodeInvalidArgument, "unknown content kind")
	}
	if limit <= 0 || limit > s.feedLimit {
		limit = s.feedLimit
	}

	owners := []uuid.UUID{viewer}
	if s.friends != nil {
		ids, err := s.friends.FriendIDs(ctx, viewer)
		if err != nil {
			return nil, err
		}
		owners = append(owners, ids...)
	}

	q := s.db.WithContext(ctx).Where("owner_id IN ?", owners)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if before > 0 {
		q = q.Where("id < ?", before)
	}
	items := []model.ContentItem{}
	if err := q.Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, apperr.FromDB("load feed", err)
	}
	return items, nil
}

// Delete removes a content item and its likes. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id int64, actor uuid.UUID) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.OwnerID != actor {
		return apperr.New(apperr.CodeForbidden, "only the owner can delete content")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_id = ?", id).Delete(&model.LikeFact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ContentItem{}, id).Error
	})
	if err != nil {
		return apperr.FromDB("delete content", err)
	}
	s.logger.Debug("content deleted", zap.Int64("content_id", id), zap.Stringer("owner", actor))
	return nil
}
