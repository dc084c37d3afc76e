package testutil

import (
	"path/filepath"
	"testing"

	"github.com/anonto42/React-native-social-media-app/server/cache"
	"github.com/anonto42/React-native-social-media-app/server/config"
	dbadapter "github.com/anonto42/React-native-social-media-app/server/db"
	"github.com/anonto42/React-native-social-media-app/server/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates a SQLite database in the test's temp dir and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: path,
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache creates an in-process cache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{}) // empty RedisAddr → LocalCache
	require.NoError(t, err, "SetupTestCache: NewCache")
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// NopLogger returns a development logger for tests.
func NopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

// CreateProfile inserts a profile with the given handle and returns it.
func CreateProfile(t *testing.T, db *gorm.DB, handle string) *model.Profile {
	t.Helper()
	p := &model.Profile{ID: uuid.New(), Handle: handle, DisplayName: handle}
	require.NoError(t, db.Create(p).Error, "CreateProfile %s", handle)
	return p
}
