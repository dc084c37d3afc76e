package social

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const generationTTL = 24 * time.Hour

// friendCache keeps friend id lists under a per-profile generation.
// Accept and Terminate bump the generation after their write commits, so a
// list read from an older snapshot is stored under a key nobody asks for again.
type friendCache struct {
	c      cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func generationKey(id uuid.UUID) string { return "social:friends:gen:" + id.String() }

func friendsKey(id uuid.UUID, gen string) string {
	return "social:friends:" + id.String() + ":" + gen
}

// generation returns the current generation for id, minting one when it is
// missing. ok is false when the cache cannot be used for this read.
func (f *friendCache) generation(ctx context.Context, id uuid.UUID) (gen string, ok bool) {
	if raw, err := f.c.Get(ctx, generationKey(id)); err == nil && raw != "" {
		return raw, true
	}
	gen = uuid.NewString()
	if err := f.c.Set(ctx, generationKey(id), gen, generationTTL); err != nil {
		f.logger.Warn("friend cache generation write failed", zap.Error(err))
		return "", false
	}
	return gen, true
}

func (f *friendCache) get(ctx context.Context, id uuid.UUID, gen string) ([]uuid.UUID, bool) {
	raw, err := f.c.Get(ctx, friendsKey(id, gen))
	if err != nil {
		return nil, false
	}
	var ids []uuid.UUID
	if json.Unmarshal([]byte(raw), &ids) != nil {
		return nil, false
	}
	return ids, true
}

func (f *friendCache) put(ctx context.Context, id uuid.UUID, gen string, ids []uuid.UUID) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	ttl := f.ttl
	if ttl <= 0 || ttl > generationTTL {
		ttl = generationTTL
	}
	if err := f.c.Set(ctx, friendsKey(id, gen), string(raw), ttl); err != nil {
		f.logger.Warn("friend cache write failed", zap.Error(err))
	}
}

// bump moves every id to a fresh generation.
func (f *friendCache) bump(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		if err := f.c.Set(ctx, generationKey(id), uuid.NewString(), generationTTL); err != nil {
			f.logger.Warn("friend cache invalidation failed", zap.String("profile_id", id.String()), zap.Error(err))
		}
	}
}
