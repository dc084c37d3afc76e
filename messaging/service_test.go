package messaging_test

import (
	"context"
	"testing"

	"github.com/anonto42/React-native-social-media-app/server/apperr"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/messaging"
	"github.com/anonto42/React-native-social-media-app/server/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := messaging.NewService(db, config.ContentConfig{}, testutil.NopLogger())
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	_, err := svc.Send(ctx, alice.ID, alice.ID, "hi me")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = svc.Send(ctx, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = svc.Send(ctx, alice.ID, uuid.New(), "hello?")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConversation_NewestFirstBothDirections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := messaging.NewService(db, config.ContentConfig{MessageLimit: 10}, testutil.NopLogger())
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	carol := testutil.CreateProfile(t, db, "carol")
	ctx := context.Background()

	m1, err := svc.Send(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	m2, err := svc.Send(ctx, bob.ID, alice.ID, "hi alice")
	require.NoError(t, err)
	_, err = svc.Send(ctx, carol.ID, alice.ID, "not in this thread")
	require.NoError(t, err)

	msgs, err := svc.Conversation(ctx, alice.ID, bob.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m2.ID, msgs[0].ID)
	assert.Equal(t, m1.ID, msgs[1].ID)

	older, err := svc.Conversation(ctx, bob.ID, alice.ID, m2.ID, 0)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, m1.ID, older[0].ID)
}

func TestMarkRead_ReceiverOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := messaging.NewService(db, config.ContentConfig{}, testutil.NopLogger())
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	ctx := context.Background()

	msg, err := svc.Send(ctx, alice.ID, bob.ID, "ping")
	require.NoError(t, err)

	n, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, svc.MarkRead(ctx, msg.ID, alice.ID), apperr.ErrForbidden)
	require.NoError(t, svc.MarkRead(ctx, msg.ID, bob.ID))
	require.NoError(t, svc.MarkRead(ctx, msg.ID, bob.ID))

	n, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.ErrorIs(t, svc.MarkRead(ctx, 9999, bob.ID), apperr.ErrNotFound)
}
