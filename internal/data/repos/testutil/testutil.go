// Package testutil provides a shared Postgres handle and seed helpers for
// repository integration tests. Tests skip unless TEST_POSTGRES_DSN is set.
package testutil

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	appdb "github.com/yungbote/ops-accountability/internal/data/db"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var testLogger = sync.OnceValues(func() (*logger.Logger, error) {
	return logger.New("test")
})

// openDB connects once per test binary and migrates the enforcement schema,
// including the can_submit_attestation function.
var openDB = sync.OnceValues(func() (*gorm.DB, error) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		return nil, errMissingDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := appdb.AutoMigrateAll(db); err != nil {
		return nil, err
	}
	return db, nil
})

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := testLogger()
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := openDB()
	switch {
	case errors.Is(err, errMissingDSN):
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	case err != nil:
		tb.Fatalf("init test db: %v", err)
	}
	return db
}

// Tx opens a transaction that is rolled back when the test ends, so each
// test sees only its own seeded rows.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { _ = tx.Rollback().Error })
	return tx
}
