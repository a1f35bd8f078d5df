package catalog

import (
	"context"
	"testing"

	"collateral-ledger/internal/adapter/repository/mysql"
	"collateral-ledger/internal/testutil/sqlitedb"

	"gorm.io/gorm"
)

// reserveDuringNextProductUpdate bumps current_borrowers inside the next product UPDATE,
// after the usecase has read the row, the way a concurrent CreateLoan would.
func reserveDuringNextProductUpdate(t *testing.T, db *gorm.DB, productID uint64) *bool {
	t.Helper()
	fired := new(bool)
	err := db.Callback().Update().Before("gorm:update").Register("test:concurrent_reserve", func(tx *gorm.DB) {
		if *fired || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "loan_products" {
			return
		}
		*fired = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE loan_products SET current_borrowers = current_borrowers + 1 WHERE id = ?", productID)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return fired
}

func newSQLiteCatalog(t *testing.T) (*gorm.DB, *mysql.ProductRepository, *Usecase) {
	t.Helper()
	db := sqlitedb.Open(t)
	products := mysql.NewProductRepository(db)
	return db, products, NewUsecase(products, mysql.NewGormUoW(db))
}

func TestSetActive_KeepsConcurrentReservation(t *testing.T) {
	db, products, uc := newSQLiteCatalog(t)
	ctx := context.Background()
	p, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fired := reserveDuringNextProductUpdate(t, db, p.ID)
	if _, err := uc.SetActive(ctx, p.ProductID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !*fired {
		t.Fatal("concurrent reservation did not run")
	}

	got, err := products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentBorrowers != 1 {
		t.Fatalf("current borrowers = %d, want 1", got.CurrentBorrowers)
	}
	if got.Active {
		t.Fatal("product still active")
	}
}

func TestUpdateTerms_KeepsConcurrentReservation(t *testing.T) {
	db, products, uc := newSQLiteCatalog(t)
	ctx := context.Background()
	p, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := validInput()
	in.InterestRateBps = 700
	fired := reserveDuringNextProductUpdate(t, db, p.ID)
	if _, err := uc.UpdateTerms(ctx, p.ProductID, in); err != nil {
		t.Fatalf("UpdateTerms: %v", err)
	}
	if !*fired {
		t.Fatal("concurrent reservation did not run")
	}

	got, err := products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentBorrowers != 1 || got.InterestRateBps != 700 {
		t.Fatalf("got borrowers=%d rate=%d, want 1 and 700", got.CurrentBorrowers, got.InterestRateBps)
	}
}
