package social_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/anonto42/React-native-social-media-app/server/social"
	"github.com/anonto42/React-native-social-media-app/server/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAuditor) Log(e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAuditor) last() audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

func newStore(t *testing.T) (*social.Store, *gorm.DB, *recordingAuditor) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	rec := &recordingAuditor{}
	return social.NewStore(db, testutil.SetupTestCache(t), rec, testutil.NopLogger()), db, rec
}

func relCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Relationship{}).Count(&n).Error)
	return n
}

// ---- CreateRequest ----

func TestCreateRequest_Pending(t *testing.T) {
	s, db, rec := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Positive(t, id)

	rel, err := s.FindBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, id, rel.ID)
	assert.Equal(t, alice.ID, rel.RequesterID)
	assert.Equal(t, bob.ID, rel.TargetID)
	assert.Equal(t, model.RelationshipPending, rel.Status)
	assert.Equal(t, audit.ActionFriendRequested, rec.last().Action)
}

func TestCreateRequest_SelfIsInvalid(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")

	_, err := s.CreateRequest(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Equal(t, int64(0), relCount(t, db))
}

func TestCreateRequest_UnknownTarget(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")

	_, err := s.CreateRequest(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRequest_DuplicateEitherDirection(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	_, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = s.CreateRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// A reverse request does not auto-accept.
	_, err = s.CreateRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Equal(t, int64(1), relCount(t, db))
	rel, err := s.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipPending, rel.Status)
}

func TestCreateRequest_WhileFriendsIsConflict(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.Accept(ctx, id, bob.ID))

	_, err = s.CreateRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateRequest_ConcurrentReverseRequests(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	pairs := [][2]uuid.UUID{{alice.ID, bob.ID}, {bob.ID, alice.ID}}
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, from, to uuid.UUID) {
			defer wg.Done()
			_, errs[i] = s.CreateRequest(context.Background(), from, to)
		}(i, p[0], p[1])
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), relCount(t, db))
}

// ---- Accept ----

func TestAccept_ByTarget(t *testing.T) {
	s, db, rec := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.Accept(ctx, id, bob.ID))

	rel, err := s.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipAccepted, rel.Status)
	assert.Equal(t, audit.ActionFriendAccepted, rec.last().Action)
}

func TestAccept_ByRequesterIsForbidden(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	carol := testutil.CreateProfile(t, db, "carol")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Accept(ctx, id, alice.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, s.Accept(ctx, id, carol.ID), apperr.ErrForbidden)

	rel, err := s.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipPending, rel.Status)
}

func TestAccept_TwiceIsInvalidState(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.Accept(ctx, id, bob.ID))

	assert.ErrorIs(t, s.Accept(ctx, id, bob.ID), apperr.ErrInvalidState)
}

func TestAccept_Missing(t *testing.T) {
	s, db, _ := newStore(t)
	bob := testutil.CreateProfile(t, db, "bob")

	assert.ErrorIs(t, s.Accept(context.Background(), 404, bob.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, s.Accept(context.Background(), 0, bob.ID), apperr.ErrInvalidArgument)
}

// ---- Terminate ----

func TestTerminate_EitherPartyFromEitherState(t *testing.T) {
	cases := []struct {
		name   string
		accept bool
		byTgt  bool
		action string
	}{
		{"requester cancels pending", false, false, audit.ActionFriendCancelled},
		{"target rejects pending", false, true, audit.ActionFriendRejected},
		{"requester unfriends", true, false, audit.ActionFriendUnfriended},
		{"target unfriends", true, true, audit.ActionFriendUnfriended},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, db, rec := newStore(t)
			alice := testutil.CreateProfile(t, db, "alice")
			bob := testutil.CreateProfile(t, db, "bob")
			ctx := context.Background()

			id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			if tc.accept {
				require.NoError(t, s.Accept(ctx, id, bob.ID))
			}
			actor := alice.ID
			if tc.byTgt {
				actor = bob.ID
			}

			require.NoError(t, s.Terminate(ctx, id, actor))
			rel, err := s.FindBetween(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.Nil(t, rel)
			assert.Equal(t, tc.action, rec.last().Action)

			// Back to absent: a fresh request is allowed in either direction.
			_, err = s.CreateRequest(ctx, bob.ID, alice.ID)
			assert.NoError(t, err)
		})
	}
}

func TestTerminate_OutsiderIsForbidden(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	carol := testutil.CreateProfile(t, db, "carol")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Terminate(ctx, id, carol.ID), apperr.ErrForbidden)
	assert.Equal(t, int64(1), relCount(t, db))
}

func TestTerminate_Twice(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, s.Terminate(ctx, id, alice.ID))

	err = s.Terminate(ctx, id, alice.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestFindBetween_Absent(t *testing.T) {
	s, db, _ := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")

	rel, err := s.FindBetween(context.Background(), alice.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, rel)
}

func TestTerminate_UnknownStatusIsInvalidState(t *testing.T) {
	s, db, rec := newStore(t)
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	id, err := s.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Relationship{}).Where("id = ?", id).
		UpdateColumn("status", "blocked").Error)

	assert.ErrorIs(t, s.Terminate(ctx, id, alice.ID), apperr.ErrInvalidState)
	assert.Equal(t, int64(1), relCount(t, db))
	assert.Equal(t, audit.ActionFriendRequested, rec.last().Action)
}
