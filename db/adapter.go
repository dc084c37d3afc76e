package db

import (
	"fmt"

	"github.com/anonto42/React-native-social-media-app/server/config"
	dbmysql "github.com/anonto42/React-native-social-media-app/server/db/mysql"
	dbpostgres "github.com/anonto42/React-native-social-media-app/server/db/postgres"
	dbsqlite "github.com/anonto42/React-native-social-media-app/server/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeSQLite   = "sqlite"
	ModeMySQL    = "mysql"
	ModePostgres = "postgres"
)

// Open returns a *gorm.DB for the configured database mode.
// Every dialect is opened with TranslateError so uniqueness violations
// surface as gorm.ErrDuplicatedKey regardless of the driver.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MaxOpen, cfg.MaxIdle, cfg.MaxLife)
	case ModePostgres:
		return dbpostgres.Open(cfg.PostgresDSN, cfg.MaxOpen, cfg.MaxIdle, cfg.MaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
