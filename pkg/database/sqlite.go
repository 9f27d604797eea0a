package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/staffplan-api/pkg/config"
)

const sqliteDriver = "sqlite"

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// NewSQLite opens a local SQLite file, used by the CLI and for development
// without a Postgres server. The pool is pinned to one connection because
// SQLite serialises writers.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.SQLitePath)

	db, err := sqlx.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	tunePool(db, cfg)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
