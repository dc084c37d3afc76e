// Package messaging stores direct messages between profiles.
package messaging

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBodyRunes = 4000

// Service sends and lists direct messages.
type Service struct {
	db     *gorm.DB
	limit  int
	logger *zap.Logger
}

// NewService creates a messaging Service.
func NewService(db *gorm.DB, cfg config.ContentConfig, logger *zap.Logger) *Service {
	limit := cfg.MessageLimit
	if limit <= 0 {
		limit = 50
	}
	return &Service{db: db, limit: limit, logger: logger}
}

// Send stores a message from sender to receiver.
func (s *Service) Send(ctx context.Context, sender, receiver uuid.UUID, body string) (*model.Message, error) {
	if sender == uuid.Nil || receiver == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	if sender == receiver {
		return nil, apperr.New(apperr.CodeInvalidArgument, "cannot message yourself")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "message body is required")
	}
	if utf8.RuneCountInString(body) > maxBodyRunes {
		return nil, apperr.New(apperr.CodeInvalidArgument, "message body too long")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Profile{}).Where("id = ?", receiver).Count(&n).Error; err != nil {
		return nil, apperr.FromDB("load receiver profile", err)
	}
	if n == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "receiver profile not found")
	}

	msg := &model.Message{SenderID: sender, ReceiverID: receiver, Body: body}
	if err := db.Create(msg).Error; err != nil {
		return nil, apperr.FromDB("send message", err)
	}
	return msg, nil
}

// Conversation returns messages exchanged between a and b, newest first.
// before is an id cursor, 0 for the first page.
func (s *Service) Conversation(ctx context.Context, a, b uuid.UUID, before int64, limit int) ([]model.Message, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	q := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if before > 0 {
		q = q.Where("id < ?", before)
	}
	msgs := []model.Message{}
	if err := q.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, apperr.FromDB("load conversation", err)
	}
	return msgs, nil
}

// MarkRead flags a message as read. Only the receiver may do so; marking an
// already-read message is a no-op.
func (s *Service) MarkRead(ctx context.Context, id int64, actor uuid.UUID) error {
	if id <= 0 {
		return apperr.New(apperr.CodeInvalidArgument, "invalid message id")
	}
	var msg model.Message
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrap(apperr.CodeNotFound, "message not found", err)
		}
		return apperr.FromDB("load message", err)
	}
	if msg.ReceiverID != actor {
		return apperr.New(apperr.CodeForbidden, "only the receiver can mark a message read")
	}
	if msg.Read {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
	if err != nil {
		return apperr.FromDB("mark message read", err)
	}
	return nil
}

// UnreadCount returns how many messages to profileID are unread.
func (s *Service) UnreadCount(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", profileID, false).
		Count(&n).Error
	if err != nil {
		return 0, apperr.FromDB("count unread messages", err)
	}
	return n, nil
}
