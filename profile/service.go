// Package profile manages the user-visible identity behind every social edge.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxDisplayName = 64
	maxBio         = 1000
	maxAvatarURL   = 512
)

// Patch lists the fields an Update may change. Nil fields are left alone.
type Patch struct {
	Handle      *string `json:"handle"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// Service reads and writes profiles.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a profile Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Ensure returns the profile for id, creating it with handle and displayName
// on first call. Later calls ignore handle and displayName.
func (s *Service) Ensure(ctx context.Context, id uuid.UUID, handle, displayName string) (*model.Profile, bool, error) {
	if id == uuid.Nil {
		return nil, false, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	if p, err := s.Get(ctx, id); err == nil {
		return p, false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	canonical, err := Canonicalize(handle)
	if err != nil {
		return nil, false, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = canonical
	}
	if len(displayName) > maxDisplayName {
		return nil, false, apperr.New(apperr.CodeInvalidArgument, "display name too long")
	}

	p := &model.Profile{ID: id, Handle: canonical, DisplayName: displayName}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Same id created concurrently: return the winner.
			if existing, getErr := s.Get(ctx, id); getErr == nil {
				return existing, false, nil
			}
			return nil, false, apperr.Wrap(apperr.CodeConflict, "handle already taken", err)
		}
		return nil, false, apperr.FromDB("create profile", err)
	}
	s.logger.Info("profile created", zap.Stringer("profile_id", id), zap.String("handle", canonical))
	return p, true, nil
}

// Get returns the profile with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetByHandle looks a profile up by handle, case-insensitively.
func (s *Service) GetByHandle(ctx context.Context, handle string) (*model.Profile, error) {
	canonical, err := Canonicalize(handle)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := s.db.WithContext(ctx).Where("handle = ?", canonical).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Update applies patch to profile id. Only the owner may update.
func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, patch Patch) (*model.Profile, error) {
	if actor != id {
		return nil, apperr.New(apperr.CodeForbidden, "only the owner can edit a profile")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Handle != nil {
		h, err := Canonicalize(*patch.Handle)
		if err != nil {
			return nil, err
		}
		if h != p.Handle {
			updates["handle"] = h
		}
	}
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if name == "" || len(name) > maxDisplayName {
			return nil, apperr.New(apperr.CodeInvalidArgument, "display name must be 1-64 characters")
		}
		updates["display_name"] = name
	}
	if patch.Bio != nil {
		if len(*patch.Bio) > maxBio {
			return nil, apperr.New(apperr.CodeInvalidArgument, "bio too long")
		}
		updates["bio"] = *patch.Bio
	}
	if patch.AvatarURL != nil {
		if len(*patch.AvatarURL) > maxAvatarURL {
			return nil, apperr.New(apperr.CodeInvalidArgument, "avatar url too long")
		}
		updates["avatar_url"] = strings.TrimSpace(*patch.AvatarURL)
	}
	if len(updates) == 0 {
		return p, nil
	}

	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(apperr.CodeConflict, "handle already taken", err)
		}
		return nil, apperr.FromDB("update profile", err)
	}
	return s.Get(ctx, id)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.CodeNotFound, "profile not found", err)
	}
	return apperr.FromDB("load profile", err)
}
