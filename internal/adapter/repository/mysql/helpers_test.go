package mysql

import (
	"context"
	"testing"
	"time"

	ledgerDomain "collateral-ledger/internal/domain/ledger"
	loanDomain "collateral-ledger/internal/domain/loan"
	productDomain "collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/testutil/sqlitedb"
	"collateral-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full ledger schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return sqlitedb.Open(t)
}

func makeProduct(maxBorrowers int64) *productDomain.Product {
	return &productDomain.Product{
		ProductID:               id.NewID32(),
		Name:                    "Stable 30d",
		MinAmount:               decimal.NewFromInt(100),
		MaxAmount:               decimal.NewFromInt(10_000),
		InterestRateBps:         500,
		CollateralRatioBps:      15_000,
		DurationSeconds:         30 * 24 * 3600,
		LiquidationThresholdBps: 12_000,
		Active:                  true,
		MaxBorrowers:            maxBorrowers,
	}
}

func seedProduct(t *testing.T, db *gorm.DB, maxBorrowers int64) *productDomain.Product {
	t.Helper()
	p := makeProduct(maxBorrowers)
	if err := NewProductRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func makeLoan(loanID, borrowerID string, productID uint64) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:     loanID,
		ProductID:  productID,
		BorrowerID: borrowerID,
		Principal:  decimal.NewFromInt(1000),
		Collateral: decimal.NewFromInt(1500),
		StartAt:    time.Now().UTC().Truncate(time.Second),
		Status:     loanDomain.StatusActive,
	}
}

func makePayment(loanID uint64, amount string) *ledgerDomain.Payment {
	a := decimal.RequireFromString(amount)
	return &ledgerDomain.Payment{
		PaymentID:        id.NewID32(),
		LoanID:           loanID,
		Amount:           a,
		InterestPortion:  decimal.Zero,
		PrincipalPortion: a,
		Kind:             ledgerDomain.PaymentPartial,
		PaidAt:           time.Now().UTC(),
	}
}
