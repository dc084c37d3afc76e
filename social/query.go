package social

import (
	"context"
	"strings"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// likeEscaper quotes LIKE metacharacters for use with ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchResult is a profile annotated with its relationship to the caller.
// Status is nil when no relationship exists.
type SearchResult struct {
	Profile        model.Profile             `json:"profile"`
	Status         *model.RelationshipStatus `json:"status"`
	RelationshipID int64                     `json:"relationship_id,omitempty"`
	Outgoing       bool                      `json:"outgoing"` // caller sent the request
}

// Query answers read-only questions about the friendship graph.
type Query struct {
	db             *gorm.DB
	friends        *friendCache
	searchLimit    int
	searchMaxLimit int
	logger         *zap.Logger
}

// NewQuery creates a Query. c may be nil to disable friend list caching.
func NewQuery(db *gorm.DB, c cache.Cache, cfg config.SocialConfig, logger *zap.Logger) *Query {
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = 20
	}
	maxLimit := cfg.SearchMaxLimit
	if maxLimit < limit {
		maxLimit = limit
	}
	var friends *friendCache
	if c != nil {
		friends = &friendCache{c: c, ttl: cfg.FriendCacheTTL, logger: logger}
	}
	return &Query{
		db:             db,
		friends:        friends,
		searchLimit:    limit,
		searchMaxLimit: maxLimit,
		logger:         logger,
	}
}

// ListFriends returns every profile with an accepted relationship to
// profileID, whichever side sent the request.
func (q *Query) ListFriends(ctx context.Context, profileID uuid.UUID) ([]model.Profile, error) {
	ids, err := q.FriendIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return q.profiles(ctx, ids)
}

// FriendIDs returns the ids behind ListFriends, served from the cache when possible.
func (q *Query) FriendIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	if profileID == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	var gen string
	cached := false
	if q.friends != nil {
		gen, cached = q.friends.generation(ctx, profileID)
		if cached {
			if ids, ok := q.friends.get(ctx, profileID, gen); ok {
				return ids, nil
			}
		}
	}

	var rels []model.Relationship
	err := q.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR target_id = ?)", model.RelationshipAccepted, profileID, profileID).
		Find(&rels).Error
	if err != nil {
		return nil, apperr.FromDB("list friends", err)
	}
	ids := lo.Map(rels, func(r model.Relationship, _ int) uuid.UUID { return r.Other(profileID) })

	if cached {
		q.friends.put(ctx, profileID, gen, ids)
	}
	return ids, nil
}

// ListIncomingRequests returns the requesters of pending relationships that target profileID.
func (q *Query) ListIncomingRequests(ctx context.Context, profileID uuid.UUID) ([]model.Profile, error) {
	return q.pending(ctx, "target_id", profileID, func(r model.Relationship) uuid.UUID { return r.RequesterID })
}

// ListOutgoingRequests returns the targets of pending relationships requested by profileID.
func (q *Query) ListOutgoingRequests(ctx context.Context, profileID uuid.UUID) ([]model.Profile, error) {
	return q.pending(ctx, "requester_id", profileID, func(r model.Relationship) uuid.UUID { return r.TargetID })
}

func (q *Query) pending(ctx context.Context, column string, profileID uuid.UUID, pick func(model.Relationship) uuid.UUID) ([]model.Profile, error) {
	if profileID == uuid.Nil {
		return nil, apperr.New(apperr.CodeInvalidArgument, "profile id is required")
	}
	var rels []model.Relationship
	err := q.db.WithContext(ctx).
		Where("status = ? AND "+column+" = ?", model.RelationshipPending, profileID).
		Order("created_at DESC").
		Find(&rels).Error
	if err != nil {
		return nil, apperr.FromDB("list requests", err)
	}
	return q.profiles(ctx, lo.Map(rels, func(r model.Relationship, _ int) uuid.UUID { return pick(r) }))
}

// SearchProfiles matches query case-insensitively against handle or display
// name, skipping excluding, and annotates each hit with its relationship to
// excluding. A non-positive limit uses the configured default; limits above
// the configured maximum are clamped. LIKE wildcards in query match literally.
// SQLite's LOWER only folds ASCII, so non-ASCII display names match
// case-sensitively in sqlite mode.
func (q *Query) SearchProfiles(ctx context.Context, query string, excluding uuid.UUID, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = q.searchLimit
	}
	if limit > q.searchMaxLimit {
		limit = q.searchMaxLimit
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	var found []model.Profile
	err := q.db.WithContext(ctx).
		Where("id <> ?", excluding).
		Where("(LOWER(handle) LIKE ? ESCAPE '!' OR LOWER(display_name) LIKE ? ESCAPE '!')", pattern, pattern).
		Order("handle").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, apperr.FromDB("search profiles", err)
	}
	if len(found) == 0 {
		return []SearchResult{}, nil
	}

	// One lookup for all candidates instead of one per result.
	ids := lo.Map(found, func(p model.Profile, _ int) uuid.UUID { return p.ID })
	var rels []model.Relationship
	err = q.db.WithContext(ctx).
		Where("(requester_id = ? AND target_id IN ?) OR (target_id = ? AND requester_id IN ?)",
			excluding, ids, excluding, ids).
		Find(&rels).Error
	if err != nil {
		return nil, apperr.FromDB("search relationships", err)
	}
	byOther := lo.KeyBy(rels, func(r model.Relationship) uuid.UUID { return r.Other(excluding) })

	results := make([]SearchResult, len(found))
	for i, p := range found {
		results[i] = SearchResult{Profile: p}
		if rel, ok := byOther[p.ID]; ok {
			status := rel.Status
			results[i].Status = &status
			results[i].RelationshipID = rel.ID
			results[i].Outgoing = rel.RequesterID == excluding
		}
	}
	return results, nil
}

func (q *Query) profiles(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	out := []model.Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	err := q.db.WithContext(ctx).
		Where("id IN ?", lo.Uniq(ids)).
		Order("handle").
		Find(&out).Error
	if err != nil {
		return nil, apperr.FromDB("load profiles", err)
	}
	return out, nil
}
