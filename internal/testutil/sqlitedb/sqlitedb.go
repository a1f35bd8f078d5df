// Package sqlitedb opens an isolated in-memory sqlite database with the ledger schema.
package sqlitedb

import (
	"fmt"
	"testing"
	"time"

	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
	"collateral-ledger/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh database. One connection only: sqlite serializes writers anyway,
// and a single conn keeps concurrent transactions from tripping over SQLITE_BUSY.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", id.NewID32())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&product.Product{},
		&loan.Loan{},
		&ledger.Payment{},
		&ledger.CollateralChange{},
		&ledger.Liquidation{},
		&ledger.AuditEntry{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
