package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/React-native-social-media-app/server/api/rest"
	"github.com/anonto42/React-native-social-media-app/server/audit"
	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	"github.com/anonto42/React-native-social-media-app/server/content"
	"github.com/anonto42/React-native-social-media-app/server/messaging"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/anonto42/React-native-social-media-app/server/profile"
	"github.com/anonto42/React-native-social-media-app/server/scheduler"
	"github.com/anonto42/React-native-social-media-app/server/social"
	"github.com/anonto42/React-native-social-media-app/server/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	adminKey   = "admin-key"
)

type server struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
	sched *scheduler.Scheduler
}

type user struct {
	id    uuid.UUID
	token string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := testutil.NopLogger()

	cfg := config.Default()
	cfg.Security.JWTSecret = testSecret
	cfg.Security.RateLimitRPS = 0
	cfg.Server.AdminKey = adminKey

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	store := social.NewStore(db, c, auditSvc, logger)
	query := social.NewQuery(db, c, cfg.Social, logger)
	ledger := content.NewLedger(db, content.NewCounter(db), cfg.Content, auditSvc, logger)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	rest.RegisterRoutes(r, rest.Deps{
		Config:     cfg,
		Cache:      c,
		Profiles:   profile.NewService(db, logger),
		Store:      store,
		Query:      query,
		Content:    content.NewService(db, query, cfg.Content, logger),
		Ledger:     ledger,
		Reconciler: content.NewReconciler(db, auditSvc, logger),
		Messages:   messaging.NewService(db, cfg.Content, logger),
		Scheduler:  sched,
		Logger:     logger,
	})
	return &server{r: r, db: db, cache: c, sched: sched}
}

// signup mints a token for a fresh identity and creates its profile.
func (s *server) signup(t *testing.T, handle string) user {
	t.Helper()
	id := uuid.New()
	token, err := mw.GenerateToken(id, testSecret, time.Hour)
	require.NoError(t, err)
	u := user{id: id, token: token}
	w := s.do(u, http.MethodPost, "/api/profiles/me", map[string]string{"handle": handle})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return u
}

func (s *server) do(u user, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
