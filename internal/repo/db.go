// Package repo implements the data persistence layer for domain entities.
// The relational side is backed by GORM over SQLite (pure Go driver) and
// holds subscribers, compliance tasks and idempotency records; the MongoDB
// side offers an alternative subscriber store.
//
// This file contains database bootstrapping helpers and schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/negga-dot/LaunchMate/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs, tunes the
// connection pool and installs the OpenTelemetry tracing plugin so every
// query becomes a child span of the request that issued it.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: newGormLogger(log.Logger),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// sqliteDSN adds per-connection pragmas. PRAGMAs run through db.Exec only
// reach one pooled connection, so lock waits and foreign keys go in the DSN.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// gormLogWriter forwards GORM's printf-style log lines to zerolog.
type gormLogWriter struct{ l zerolog.Logger }

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.l.Warn().Str("component", "gorm").Msg(fmt.Sprintf(format, args...))
}

// newGormLogger logs slow queries and real errors only. Bind parameters are
// left out of the SQL so addresses never reach the log, and a lookup that
// finds nothing is not an error.
func newGormLogger(l zerolog.Logger) logger.Interface {
	return logger.New(gormLogWriter{l: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Subscriber{},
		&domain.ComplianceTask{},
		&domain.Idempotency{},
	)
}
