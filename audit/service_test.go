package audit

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/anonto42/React-native-social-media-app/server/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())

	actor := uuid.New()
	svc.Log(Entry{
		TraceID:   "trace-123",
		ActorID:   ActorID(actor),
		Action:    ActionFriendRejected,
		SubjectID: 7,
		Detail:    map[string]string{"requester_id": "a", "target_id": "b"},
	})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, ActionFriendRejected, logs[0].Action)
	assert.Equal(t, int64(7), logs[0].SubjectID)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, actor, *logs[0].ActorID)
	assert.JSONEq(t, `{"requester_id":"a","target_id":"b"}`, string(logs[0].Detail))
}

func TestLog_MultipleLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())

	for i := 0; i < 10; i++ {
		svc.Log(Entry{Action: ActionCounterRepaired, SubjectID: int64(i)})
	}

	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(10), count)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())

	for i := 0; i < 100; i++ {
		svc.Log(Entry{Action: "batch"})
	}

	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.GreaterOrEqual(t, count, int64(100))
}

func TestLog_TimerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())
	defer svc.Stop(context.Background())

	svc.Log(Entry{Action: "timer_test"})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Count(&count)
		return count == 1
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())
	svc.Stop(context.Background())
	svc.Stop(context.Background()) // must not panic
}

func TestLog_NilFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())

	svc.Log(Entry{Action: "no_actor"})

	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].ActorID)
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.NopLogger())

	// The channel capacity is 1024; flooding must not block or panic.
	for i := 0; i < 1030; i++ {
		svc.Log(Entry{Action: "flood"})
	}
	svc.Stop(context.Background())
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
}
